package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/google/uuid"
)

// PostgresApplicationStore implements the store.ApplicationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresApplicationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresApplicationStore creates a new PostgreSQL implementation of
// the ApplicationStore interface.
func NewPostgresApplicationStore(db store.DBTX, log *slog.Logger) *PostgresApplicationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresApplicationStore{
		db:     db,
		logger: log.With(slog.String("component", "application_store")),
	}
}

// Ensure PostgresApplicationStore implements store.ApplicationStore interface
var _ store.ApplicationStore = (*PostgresApplicationStore)(nil)

const applicationColumns = `
	id, owner_id, job_url, status, submission_timestamp,
	extracted_job_title, extracted_company_name, error_message,
	created_at, updated_at
`

// scanApplication scans one application row from any row-shaped source.
func scanApplication(row interface {
	Scan(dest ...any) error
}) (*domain.JobApplication, error) {
	var app domain.JobApplication
	var status string
	var submissionTS sql.NullTime

	err := row.Scan(
		&app.ID,
		&app.OwnerID,
		&app.JobURL,
		&status,
		&submissionTS,
		&app.ExtractedJobTitle,
		&app.ExtractedCompanyName,
		&app.ErrorMessage,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.Status = domain.ApplicationStatus(status)
	if submissionTS.Valid {
		ts := submissionTS.Time
		app.SubmissionTimestamp = &ts
	}

	return &app, nil
}

// Create implements store.ApplicationStore.Create
// Returns the domain validation error if the record is invalid and
// store.ErrValidation if the owner row is missing.
func (s *PostgresApplicationStore) Create(ctx context.Context, app *domain.JobApplication) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := app.Validate(); err != nil {
		log.Warn("application validation failed during create",
			slog.String("error", err.Error()),
			slog.String("application_id", app.ID.String()))
		return err
	}

	query := `
		INSERT INTO job_applications (
			id, owner_id, job_url, status,
			extracted_job_title, extracted_company_name, error_message,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.OwnerID,
		app.JobURL,
		app.Status,
		app.ExtractedJobTitle,
		app.ExtractedCompanyName,
		app.ErrorMessage,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create application",
			slog.String("error", err.Error()),
			slog.String("application_id", app.ID.String()),
			slog.String("owner_id", app.OwnerID.String()))
		return MapError(err)
	}

	log.Info("application created",
		slog.String("application_id", app.ID.String()),
		slog.String("owner_id", app.OwnerID.String()),
		slog.String("status", string(app.Status)))
	return nil
}

// GetForOwner implements store.ApplicationStore.GetForOwner
// Returns store.ErrApplicationNotFound whether the application is missing
// or owned by someone else; the two cases are indistinguishable to the
// caller.
func (s *PostgresApplicationStore) GetForOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.JobApplication, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE id = $1 AND owner_id = $2
	`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("application not found for owner",
				slog.String("application_id", id.String()),
				slog.String("owner_id", ownerID.String()))
			return nil, store.ErrApplicationNotFound
		}
		log.Error("failed to get application",
			slog.String("error", err.Error()),
			slog.String("application_id", id.String()))
		return nil, MapError(err)
	}

	return app, nil
}

// GetByID implements store.ApplicationStore.GetByID
// This is the worker-side read: no owner scoping, the caller holds only
// the application ID delivered through the queue.
func (s *PostgresApplicationStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.JobApplication, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE id = $1
	`

	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("application not found",
				slog.String("application_id", id.String()))
			return nil, store.ErrApplicationNotFound
		}
		log.Error("failed to get application by ID",
			slog.String("error", err.Error()),
			slog.String("application_id", id.String()))
		return nil, MapError(err)
	}

	return app, nil
}

// ListForOwner implements store.ApplicationStore.ListForOwner
// Results are ordered newest first by creation time. Returns an empty
// slice when the owner has no applications.
func (s *PostgresApplicationStore) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.JobApplication, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		log.Error("failed to list applications",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var apps []*domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			log.Error("failed to scan application row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if apps == nil {
		apps = []*domain.JobApplication{}
	}

	return apps, nil
}

// UpdateStatus implements store.ApplicationStore.UpdateStatus
// The error message column is overwritten, never appended to, so the
// stored message always describes the latest attempt. A transition to
// SUBMITTED additionally stamps submission_timestamp.
// Returns store.ErrApplicationNotFound if the row is gone.
func (s *PostgresApplicationStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ApplicationStatus,
	errorMessage string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		log.Warn("rejected invalid status value",
			slog.String("application_id", id.String()),
			slog.String("status", string(status)))
		return domain.ErrInvalidApplicationState
	}

	now := touchTime()

	var query string
	var args []any
	if status == domain.ApplicationStatusSubmitted {
		query = `
			UPDATE job_applications
			SET status = $1, error_message = $2, submission_timestamp = $3, updated_at = $4
			WHERE id = $5
		`
		args = []any{status, errorMessage, now, now, id}
	} else {
		query = `
			UPDATE job_applications
			SET status = $1, error_message = $2, updated_at = $3
			WHERE id = $4
		`
		args = []any{status, errorMessage, now, id}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update application status",
			slog.String("error", err.Error()),
			slog.String("application_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "job application"); err != nil {
		log.Debug("application not found for status update",
			slog.String("application_id", id.String()))
		return store.ErrApplicationNotFound
	}

	log.Info("application status updated",
		slog.String("application_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// SetExtracted implements store.ApplicationStore.SetExtracted
// Empty arguments keep the stored values, so a partial extraction never
// erases data captured by an earlier attempt.
// Returns store.ErrApplicationNotFound if the row is gone.
func (s *PostgresApplicationStore) SetExtracted(
	ctx context.Context,
	id uuid.UUID,
	title, company string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE job_applications
		SET extracted_job_title = CASE WHEN $1 <> '' THEN $1 ELSE extracted_job_title END,
		    extracted_company_name = CASE WHEN $2 <> '' THEN $2 ELSE extracted_company_name END,
		    updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, title, company, touchTime(), id)
	if err != nil {
		log.Error("failed to set extracted fields",
			slog.String("error", err.Error()),
			slog.String("application_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "job application"); err != nil {
		log.Debug("application not found for extracted update",
			slog.String("application_id", id.String()))
		return store.ErrApplicationNotFound
	}

	return nil
}

// WithTx implements store.ApplicationStore.WithTx
func (s *PostgresApplicationStore) WithTx(tx *sql.Tx) store.ApplicationStore {
	return &PostgresApplicationStore{
		db:     tx,
		logger: s.logger,
	}
}
