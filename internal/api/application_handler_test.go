package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitApplicationEndpoint(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	svc := &mockApplicationService{
		submitFn: func(ctx context.Context, gotOwner uuid.UUID, jobURL string) (*domain.JobApplication, error) {
			assert.Equal(t, ownerID, gotOwner)
			app, err := domain.NewJobApplication(gotOwner, jobURL)
			require.NoError(t, err)
			app.Status = domain.ApplicationStatusQueued
			return app, nil
		},
	}
	handler := NewApplicationHandler(svc)

	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodPost, "/applications",
		strings.NewReader(`{"job_url":"https://jobs.example.com/123"}`), ownerID)
	handler.SubmitApplication(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp ApplicationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://jobs.example.com/123", resp.JobURL)
	assert.Equal(t, string(domain.ApplicationStatusQueued), resp.Status)
}

func TestSubmitApplicationRejections(t *testing.T) {
	t.Parallel()

	svc := &mockApplicationService{
		submitFn: func(ctx context.Context, ownerID uuid.UUID, jobURL string) (*domain.JobApplication, error) {
			return nil, domain.ErrInvalidJobURL
		},
	}
	handler := NewApplicationHandler(svc)

	// Unauthenticated request.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/applications",
		strings.NewReader(`{"job_url":"https://jobs.example.com/123"}`))
	handler.SubmitApplication(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing and malformed URLs.
	for _, body := range []string{`{}`, `{"job_url":"not-a-url"}`} {
		w = httptest.NewRecorder()
		r = authenticatedRequest(t, http.MethodPost, "/applications", strings.NewReader(body), uuid.New())
		handler.SubmitApplication(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func newChiRequest(t *testing.T, r *http.Request, paramName, paramValue string) *http.Request {
	t.Helper()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramName, paramValue)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetApplicationEndpoint(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	app, err := domain.NewJobApplication(ownerID, "https://jobs.example.com/1")
	require.NoError(t, err)

	svc := &mockApplicationService{
		getFn: func(ctx context.Context, gotOwner, id uuid.UUID) (*domain.JobApplication, error) {
			if gotOwner == ownerID && id == app.ID {
				return app, nil
			}
			return nil, service.ErrApplicationNotFound
		},
	}
	handler := NewApplicationHandler(svc)

	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodGet, "/applications/"+app.ID.String(), nil, ownerID)
	r = newChiRequest(t, r, "id", app.ID.String())
	handler.GetApplication(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ApplicationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, app.ID, resp.ID)

	// Someone else's application looks missing.
	w = httptest.NewRecorder()
	r = authenticatedRequest(t, http.MethodGet, "/applications/"+app.ID.String(), nil, uuid.New())
	r = newChiRequest(t, r, "id", app.ID.String())
	handler.GetApplication(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed ID.
	w = httptest.NewRecorder()
	r = authenticatedRequest(t, http.MethodGet, "/applications/nope", nil, ownerID)
	r = newChiRequest(t, r, "id", "nope")
	handler.GetApplication(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListApplicationsEndpoint(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	var gotOffset, gotLimit int
	svc := &mockApplicationService{
		listFn: func(ctx context.Context, gotOwner uuid.UUID, offset, limit int) ([]*domain.JobApplication, error) {
			gotOffset, gotLimit = offset, limit
			app, err := domain.NewJobApplication(ownerID, "https://jobs.example.com/1")
			require.NoError(t, err)
			return []*domain.JobApplication{app}, nil
		},
	}
	handler := NewApplicationHandler(svc)

	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodGet, "/applications?offset=10&limit=20", nil, ownerID)
	handler.ListApplications(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, gotOffset)
	assert.Equal(t, 20, gotLimit)

	var resp ApplicationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Applications, 1)
	assert.Equal(t, 10, resp.Offset)

	// Out-of-range paging values fall back to defaults.
	w = httptest.NewRecorder()
	r = authenticatedRequest(t, http.MethodGet, "/applications?offset=-5&limit=99999", nil, ownerID)
	handler.ListApplications(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, defaultListLimit, gotLimit)
}
