package store

import (
	"context"
	"database/sql"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/google/uuid"
)

// ApplicationStore owns the persisted lifecycle state of job applications.
// Status writes are unconditional overwrites: exactly one worker attempt is
// expected per application at a time, and duplicate deliveries converge on
// the same deterministic outcome, so last-writer-wins is acceptable.
type ApplicationStore interface {
	// Create inserts a new application (status RECEIVED).
	// Returns the domain validation error if the record is invalid.
	Create(ctx context.Context, app *domain.JobApplication) error

	// GetForOwner retrieves an application by ID, scoped to its owner.
	// Returns ErrApplicationNotFound if the application does not exist or
	// belongs to a different owner; the caller can never distinguish the
	// two cases.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.JobApplication, error)

	// GetByID retrieves an application by ID without owner scoping. This
	// is the worker boundary: the dispatcher delivers only the application
	// ID and all other state is re-read from the store.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error)

	// ListForOwner returns the owner's applications, newest first by
	// creation time.
	ListForOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.JobApplication, error)

	// UpdateStatus overwrites the status and error message (the previous
	// message is replaced, never appended to). When status is SUBMITTED the
	// submission timestamp is stamped with the current time. Bumps
	// updated_at. Returns ErrApplicationNotFound if the row is gone.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, errorMessage string) error

	// SetExtracted records the extracted job title and/or company name,
	// non-destructively: empty arguments leave the stored value in place.
	// Returns ErrApplicationNotFound if the row is gone.
	SetExtracted(ctx context.Context, id uuid.UUID, title, company string) error

	// WithTx returns an ApplicationStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ApplicationStore
}
