package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/applyflow/applyflow-api/internal/api/shared"
	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/applyflow/applyflow-api/internal/service/auth"
	"github.com/google/uuid"
)

// mockUserService implements service.UserService with injectable behavior.
type mockUserService struct {
	registerFn   func(ctx context.Context, email, password string) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	return m.registerFn(ctx, email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return nil, service.ErrUserNotFound
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFn(ctx, email)
}

// mockProfileService implements service.ProfileService.
type mockProfileService struct {
	getFn    func(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
	updateFn func(ctx context.Context, userID uuid.UUID, incoming *domain.UserProfile) (*domain.UserProfile, error)
	attachFn func(ctx context.Context, userID uuid.UUID, filename, contentType string, r io.Reader) (*domain.UserProfile, error)
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	return m.getFn(ctx, userID)
}

func (m *mockProfileService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	incoming *domain.UserProfile,
) (*domain.UserProfile, error) {
	return m.updateFn(ctx, userID, incoming)
}

func (m *mockProfileService) AttachResume(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	r io.Reader,
) (*domain.UserProfile, error) {
	return m.attachFn(ctx, userID, filename, contentType, r)
}

func (m *mockProfileService) GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	return nil, service.ErrProfileNotFound
}

// mockApplicationService implements service.ApplicationService.
type mockApplicationService struct {
	submitFn func(ctx context.Context, ownerID uuid.UUID, jobURL string) (*domain.JobApplication, error)
	getFn    func(ctx context.Context, ownerID, id uuid.UUID) (*domain.JobApplication, error)
	listFn   func(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.JobApplication, error)
}

func (m *mockApplicationService) SubmitApplication(
	ctx context.Context,
	ownerID uuid.UUID,
	jobURL string,
) (*domain.JobApplication, error) {
	return m.submitFn(ctx, ownerID, jobURL)
}

func (m *mockApplicationService) GetApplication(ctx context.Context, ownerID, id uuid.UUID) (*domain.JobApplication, error) {
	return m.getFn(ctx, ownerID, id)
}

func (m *mockApplicationService) ListApplications(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.JobApplication, error) {
	return m.listFn(ctx, ownerID, offset, limit)
}

// mockJWT issues fixed token strings.
type mockJWT struct {
	accessToken  string
	refreshToken string
	generateErr  error
	validateFn   func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWT) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.accessToken, m.generateErr
}

func (m *mockJWT) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.refreshToken, m.generateErr
}

func (m *mockJWT) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (m *mockJWT) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, tokenString)
	}
	return nil, auth.ErrInvalidToken
}

// mockVerifier accepts one password.
type mockVerifier struct {
	accept string
}

func (m *mockVerifier) Compare(hashedPassword, password string) error {
	if password == m.accept {
		return nil
	}
	return errors.New("password mismatch")
}

// authenticatedRequest builds a request whose context carries the user ID,
// as the auth middleware would.
func authenticatedRequest(t *testing.T, method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}
