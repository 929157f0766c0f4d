package service

import (
	"context"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/applyflow/applyflow-api/internal/task"
	"github.com/google/uuid"
)

// ApplicationTaskAdapter exposes the application store to the worker side
// under the task layer's interface. Unlike the owner-facing service it reads
// applications without owner scoping: the worker holds only an application
// ID and re-reads everything else from the store.
type ApplicationTaskAdapter struct {
	apps   store.ApplicationStore
	logger *slog.Logger
}

// Ensure the adapter satisfies the worker-side contract.
var _ task.ApplicationService = (*ApplicationTaskAdapter)(nil)

// NewApplicationTaskAdapter creates an adapter over the application store.
func NewApplicationTaskAdapter(apps store.ApplicationStore, logger *slog.Logger) *ApplicationTaskAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationTaskAdapter{
		apps:   apps,
		logger: logger.With("component", "application_task_adapter"),
	}
}

// GetApplication retrieves an application by ID without owner scoping.
func (a *ApplicationTaskAdapter) GetApplication(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	return a.apps.GetByID(ctx, id)
}

// UpdateApplicationStatus overwrites the application's status and error
// message.
func (a *ApplicationTaskAdapter) UpdateApplicationStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ApplicationStatus,
	errorMessage string,
) error {
	return a.apps.UpdateStatus(ctx, id, status, errorMessage)
}

// RecordExtracted stores the extracted job title and company name.
func (a *ApplicationTaskAdapter) RecordExtracted(ctx context.Context, id uuid.UUID, title, company string) error {
	return a.apps.SetExtracted(ctx, id, title, company)
}
