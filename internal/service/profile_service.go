package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/applyflow/applyflow-api/internal/task"
	"github.com/google/uuid"
)

// ResumeStorage uploads resume documents and returns an opaque storage
// reference for later resolution by the worker. Satisfied by the GCS store.
type ResumeStorage interface {
	UploadResume(ctx context.Context, userID uuid.UUID, filename, contentType string, r io.Reader) (string, error)
}

// ProfileService provides profile-related operations, including the
// worker-side snapshot read.
type ProfileService interface {
	// GetProfile retrieves the user's profile.
	// Returns ErrProfileNotFound if no profile exists.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)

	// UpdateProfile replaces the stored profile fields with the incoming
	// ones. The resume reference is managed by AttachResume and survives
	// the update untouched. Returns the stored profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, incoming *domain.UserProfile) (*domain.UserProfile, error)

	// AttachResume uploads a resume document and records its storage
	// reference on the profile. The previous reference, if any, is
	// replaced. Returns the updated profile.
	AttachResume(ctx context.Context, userID uuid.UUID, filename, contentType string, r io.Reader) (*domain.UserProfile, error)

	// GetSnapshot returns a read-only view of the profile plus the
	// owner's email for one processing attempt.
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error)
}

// profileServiceImpl implements ProfileService.
type profileServiceImpl struct {
	profiles store.ProfileStore
	users    store.UserStore
	resumes  ResumeStorage
	logger   *slog.Logger
}

// Ensure the service satisfies the worker-side snapshot contract.
var _ task.SnapshotProvider = (ProfileService)(nil)

// NewProfileService creates a ProfileService. The resume storage may be nil
// when no document store is configured; AttachResume then fails cleanly.
func NewProfileService(
	profiles store.ProfileStore,
	users store.UserStore,
	resumes ResumeStorage,
	logger *slog.Logger,
) (ProfileService, error) {
	if profiles == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "profile store cannot be nil"}
	}
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "user store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &profileServiceImpl{
		profiles: profiles,
		users:    users,
		resumes:  resumes,
		logger:   logger.With("component", "profile_service"),
	}, nil
}

// GetProfile retrieves the user's profile.
func (s *profileServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Error("failed to retrieve profile",
				"error", err,
				"user_id", userID)
		}
		return nil, mapStoreError("get_profile", "failed to retrieve profile", err)
	}
	return profile, nil
}

// UpdateProfile replaces the stored profile fields with the incoming ones.
func (s *profileServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	incoming *domain.UserProfile,
) (*domain.UserProfile, error) {
	current, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapStoreError("update_profile", "failed to load profile", err)
	}

	updated := *incoming
	updated.ID = current.ID
	updated.UserID = userID
	updated.ResumeRef = current.ResumeRef
	updated.CreatedAt = current.CreatedAt

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.profiles.Update(ctx, &updated); err != nil {
		s.logger.Error("failed to update profile",
			"error", err,
			"user_id", userID)
		return nil, mapStoreError("update_profile", "failed to save profile", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return &updated, nil
}

// AttachResume uploads a resume document and records its storage reference
// on the profile.
func (s *profileServiceImpl) AttachResume(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	r io.Reader,
) (*domain.UserProfile, error) {
	if s.resumes == nil {
		return nil, &ServiceError{Operation: "attach_resume", Message: "no resume storage configured"}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapStoreError("attach_resume", "failed to load profile", err)
	}

	ref, err := s.resumes.UploadResume(ctx, userID, filename, contentType, r)
	if err != nil {
		s.logger.Error("failed to upload resume",
			"error", err,
			"user_id", userID)
		return nil, &ServiceError{Operation: "attach_resume", Message: "failed to upload resume", Err: err}
	}

	profile.ResumeRef = ref
	if err := s.profiles.Update(ctx, profile); err != nil {
		s.logger.Error("failed to record resume reference",
			"error", err,
			"user_id", userID)
		return nil, mapStoreError("attach_resume", "failed to record resume reference", err)
	}

	s.logger.Info("resume attached", "user_id", userID)
	return profile, nil
}

// GetSnapshot returns the profile plus the owner's email as a read-only
// view for one processing attempt.
func (s *profileServiceImpl) GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapStoreError("get_snapshot", "failed to load user", err)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapStoreError("get_snapshot", "failed to load profile", err)
	}

	return &domain.ProfileSnapshot{
		Email:   user.Email,
		Profile: *profile,
	}, nil
}
