package store

import (
	"context"
	"database/sql"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/google/uuid"
)

// ProfileStore defines the interface for user profile persistence. One
// profile exists per user; it is created empty at registration time and
// removed with its owner.
type ProfileStore interface {
	// Create saves a new profile.
	// Returns ErrDuplicate if a profile already exists for the user.
	Create(ctx context.Context, profile *domain.UserProfile) error

	// GetByUserID retrieves the profile owned by the given user.
	// Returns ErrProfileNotFound if no profile exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)

	// Update overwrites the stored profile fields and bumps updated_at.
	// Returns ErrProfileNotFound if no profile exists.
	Update(ctx context.Context, profile *domain.UserProfile) error

	// WithTx returns a ProfileStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ProfileStore
}
