package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/events"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/applyflow/applyflow-api/internal/task"
	"github.com/google/uuid"
)

// ApplicationService provides the owner-facing job application operations.
type ApplicationService interface {
	// SubmitApplication records a new application for the owner and
	// requests background processing. The returned application is in the
	// QUEUED state on success. Returns domain.ErrInvalidJobURL when the
	// URL does not parse as an absolute http(s) URL.
	SubmitApplication(ctx context.Context, ownerID uuid.UUID, jobURL string) (*domain.JobApplication, error)

	// GetApplication retrieves one of the owner's applications. Returns
	// ErrApplicationNotFound when the application does not exist or
	// belongs to someone else.
	GetApplication(ctx context.Context, ownerID, id uuid.UUID) (*domain.JobApplication, error)

	// ListApplications returns the owner's applications, newest first.
	ListApplications(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.JobApplication, error)
}

// applicationServiceImpl implements ApplicationService.
type applicationServiceImpl struct {
	apps         store.ApplicationStore
	db           *sql.DB
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewApplicationService creates an ApplicationService. It returns an error
// if any required dependency is nil.
func NewApplicationService(
	apps store.ApplicationStore,
	db *sql.DB,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (ApplicationService, error) {
	if apps == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "application store cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "event emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &applicationServiceImpl{
		apps:         apps,
		db:           db,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "application_service"),
	}, nil
}

// SubmitApplication creates the application in the RECEIVED state, emits a
// processing request, and advances the record to QUEUED. The create runs in
// its own transaction so a row exists before the event leaves the service;
// if the event cannot be emitted the record stays behind in RECEIVED and
// the error is returned.
func (s *applicationServiceImpl) SubmitApplication(
	ctx context.Context,
	ownerID uuid.UUID,
	jobURL string,
) (*domain.JobApplication, error) {
	app, err := domain.NewJobApplication(ownerID, jobURL)
	if err != nil {
		s.logger.Debug("rejected application submission",
			"error", err,
			"owner_id", ownerID)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.apps.WithTx(tx).Create(ctx, app)
	})
	if err != nil {
		s.logger.Error("failed to save application",
			"error", err,
			"owner_id", ownerID)
		return nil, mapStoreError("submit_application", "failed to save application", err)
	}

	event, err := events.NewApplicationProcessingEvent(task.TaskTypeApplicationProcessing, app.ID)
	if err != nil {
		s.logger.Error("failed to create processing event",
			"error", err,
			"application_id", app.ID)
		return nil, &ServiceError{Operation: "submit_application", Message: "failed to create processing event", Err: err}
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit processing event",
			"error", err,
			"application_id", app.ID,
			"event_id", event.ID)
		return nil, &ServiceError{Operation: "submit_application", Message: "failed to request processing", Err: err}
	}

	if err := s.apps.UpdateStatus(ctx, app.ID, domain.ApplicationStatusQueued, ""); err != nil {
		// Processing is already requested; the worker will overwrite the
		// status on its own, so a failed QUEUED write is not fatal.
		s.logger.Warn("failed to mark application as queued",
			"error", err,
			"application_id", app.ID)
	} else {
		app.Status = domain.ApplicationStatusQueued
	}

	s.logger.Info("application submitted",
		"application_id", app.ID,
		"owner_id", ownerID)

	return app, nil
}

// GetApplication retrieves one of the owner's applications.
func (s *applicationServiceImpl) GetApplication(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.JobApplication, error) {
	app, err := s.apps.GetForOwner(ctx, id, ownerID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to retrieve application",
				"error", err,
				"application_id", id,
				"owner_id", ownerID)
		}
		return nil, mapStoreError("get_application", "failed to retrieve application", err)
	}
	return app, nil
}

// ListApplications returns the owner's applications, newest first.
func (s *applicationServiceImpl) ListApplications(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.JobApplication, error) {
	apps, err := s.apps.ListForOwner(ctx, ownerID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list applications",
			"error", err,
			"owner_id", ownerID)
		return nil, mapStoreError("list_applications", "failed to list applications", err)
	}
	return apps, nil
}
