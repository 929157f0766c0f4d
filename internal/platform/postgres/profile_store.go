package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/google/uuid"
)

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend. The structured
// profile sections (address, work experience, education, skills, common
// Q&A) are stored as JSONB columns.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface.
func NewPostgresProfileStore(db store.DBTX, log *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: log.With(slog.String("component", "profile_store")),
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// profileJSON holds the marshalled JSONB columns for one profile row.
type profileJSON struct {
	address        []byte
	workExperience []byte
	education      []byte
	skills         []byte
	commonQnA      []byte
}

// marshalProfile converts the structured profile sections to their JSONB
// column representations. Nil collections are stored as empty JSON values
// so scans never face SQL NULLs in the NOT NULL columns.
func marshalProfile(p *domain.UserProfile) (*profileJSON, error) {
	var out profileJSON
	var err error

	if p.Address != nil {
		if out.address, err = json.Marshal(p.Address); err != nil {
			return nil, fmt.Errorf("failed to marshal address: %w", err)
		}
	}

	we := p.WorkExperience
	if we == nil {
		we = []domain.WorkExperience{}
	}
	if out.workExperience, err = json.Marshal(we); err != nil {
		return nil, fmt.Errorf("failed to marshal work experience: %w", err)
	}

	edu := p.Education
	if edu == nil {
		edu = []domain.Education{}
	}
	if out.education, err = json.Marshal(edu); err != nil {
		return nil, fmt.Errorf("failed to marshal education: %w", err)
	}

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	if out.skills, err = json.Marshal(skills); err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}

	qna := p.CommonQnA
	if qna == nil {
		qna = map[string]string{}
	}
	if out.commonQnA, err = json.Marshal(qna); err != nil {
		return nil, fmt.Errorf("failed to marshal common qna: %w", err)
	}

	return &out, nil
}

// Create implements store.ProfileStore.Create
// Returns store.ErrDuplicate if a profile already exists for the user and
// store.ErrValidation if the user row is missing.
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during create",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	cols, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_profiles (
			id, user_id, first_name, last_name, phone, address,
			linkedin_url, portfolio_url, resume_ref,
			work_experience, education, skills, common_qna,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		cols.address,
		profile.LinkedInURL,
		profile.PortfolioURL,
		profile.ResumeRef,
		cols.workExperience,
		cols.education,
		cols.skills,
		cols.commonQnA,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()),
			slog.String("user_id", profile.UserID.String()))
		return MapError(err)
	}

	log.Info("profile created successfully",
		slog.String("profile_id", profile.ID.String()),
		slog.String("user_id", profile.UserID.String()))
	return nil
}

// GetByUserID implements store.ProfileStore.GetByUserID
// Returns store.ErrProfileNotFound if no profile exists for the user.
func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, first_name, last_name, phone, address,
		       linkedin_url, portfolio_url, resume_ref,
		       work_experience, education, skills, common_qna,
		       created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var profile domain.UserProfile
	var address, workExperience, education, skills, commonQnA []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Phone,
		&address,
		&profile.LinkedInURL,
		&profile.PortfolioURL,
		&profile.ResumeRef,
		&workExperience,
		&education,
		&skills,
		&commonQnA,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("profile not found",
				slog.String("user_id", userID.String()))
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &profile.Address); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}
	if err := json.Unmarshal(workExperience, &profile.WorkExperience); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work experience: %w", err)
	}
	if err := json.Unmarshal(education, &profile.Education); err != nil {
		return nil, fmt.Errorf("failed to unmarshal education: %w", err)
	}
	if err := json.Unmarshal(skills, &profile.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	if err := json.Unmarshal(commonQnA, &profile.CommonQnA); err != nil {
		return nil, fmt.Errorf("failed to unmarshal common qna: %w", err)
	}

	return &profile, nil
}

// Update implements store.ProfileStore.Update
// It overwrites every mutable column and bumps updated_at.
// Returns store.ErrProfileNotFound if no profile exists for the user.
func (s *PostgresProfileStore) Update(ctx context.Context, profile *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during update",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	cols, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	profile.UpdatedAt = touchTime()

	query := `
		UPDATE user_profiles
		SET first_name = $1, last_name = $2, phone = $3, address = $4,
		    linkedin_url = $5, portfolio_url = $6, resume_ref = $7,
		    work_experience = $8, education = $9, skills = $10,
		    common_qna = $11, updated_at = $12
		WHERE user_id = $13
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		cols.address,
		profile.LinkedInURL,
		profile.PortfolioURL,
		profile.ResumeRef,
		cols.workExperience,
		cols.education,
		cols.skills,
		cols.commonQnA,
		profile.UpdatedAt,
		profile.UserID,
	)

	if err != nil {
		log.Error("failed to update profile",
			slog.String("error", err.Error()),
			slog.String("user_id", profile.UserID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user profile"); err != nil {
		log.Debug("profile not found for update",
			slog.String("user_id", profile.UserID.String()))
		return store.ErrProfileNotFound
	}

	log.Info("profile updated successfully",
		slog.String("profile_id", profile.ID.String()),
		slog.String("user_id", profile.UserID.String()))
	return nil
}

// WithTx implements store.ProfileStore.WithTx
func (s *PostgresProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &PostgresProfileStore{
		db:     tx,
		logger: s.logger,
	}
}
