package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/google/uuid"
)

// UserService provides account-level operations.
type UserService interface {
	// RegisterUser creates a new user and their empty profile in one
	// transaction. Returns ErrEmailExists if the email is already taken.
	RegisterUser(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// userServiceImpl implements UserService.
type userServiceImpl struct {
	users    store.UserStore
	profiles store.ProfileStore
	db       *sql.DB
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	profiles store.ProfileStore,
	db *sql.DB,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "user store cannot be nil"}
	}
	if profiles == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "profile store cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		profiles: profiles,
		db:       db,
		logger:   logger.With("component", "user_service"),
	}, nil
}

// RegisterUser creates a new user and their empty profile. The two inserts
// share a transaction so an account never exists without a profile.
func (s *userServiceImpl) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("rejected registration",
			"error", err)
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		profile, err := domain.NewUserProfile(user.ID)
		if err != nil {
			return err
		}
		return s.profiles.WithTx(tx).Create(ctx, profile)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted registration with existing email")
		} else {
			s.logger.Error("failed to register user",
				"error", err)
		}
		return nil, mapStoreError("register_user", "failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapStoreError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to retrieve user by email",
				"error", err)
		}
		return nil, mapStoreError("get_user_by_email", "failed to retrieve user", err)
	}
	return user, nil
}
