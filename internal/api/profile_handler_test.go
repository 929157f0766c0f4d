package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	profile, err := domain.NewUserProfile(userID)
	require.NoError(t, err)
	profile.FirstName = "Dana"

	svc := &mockProfileService{
		getFn: func(ctx context.Context, gotID uuid.UUID) (*domain.UserProfile, error) {
			if gotID == userID {
				return profile, nil
			}
			return nil, service.ErrProfileNotFound
		},
	}
	handler := NewProfileHandler(svc)

	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodGet, "/profile", nil, userID)
	handler.GetProfile(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Dana", resp.FirstName)

	// Unauthenticated request.
	w = httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var received *domain.UserProfile
	svc := &mockProfileService{
		updateFn: func(ctx context.Context, gotID uuid.UUID, incoming *domain.UserProfile) (*domain.UserProfile, error) {
			received = incoming
			stored := *incoming
			stored.ID = uuid.New()
			stored.UserID = gotID
			return &stored, nil
		},
	}
	handler := NewProfileHandler(svc)

	body := `{
		"first_name": "Dana",
		"last_name": "Smith",
		"address": {"city": "Berlin", "extra": {"floor": 3}},
		"skills": ["Go", "SQL"],
		"common_qna": {"visa_status": "citizen"}
	}`

	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodPut, "/profile", strings.NewReader(body), userID)
	handler.UpdateProfile(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, received)
	assert.Equal(t, "Dana", received.FirstName)
	assert.Equal(t, []string{"Go", "SQL"}, received.Skills)

	// Schemaless address keys survive the round trip.
	assert.Equal(t, "Berlin", received.Address["city"])
	extra, ok := received.Address["extra"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, extra["floor"])

	// Malformed body.
	w = httptest.NewRecorder()
	r = authenticatedRequest(t, http.MethodPut, "/profile", strings.NewReader(`{"first_name"`), userID)
	handler.UpdateProfile(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartResume(t *testing.T, fieldName, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadResumeEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var gotFilename string
	svc := &mockProfileService{
		attachFn: func(ctx context.Context, gotID uuid.UUID, filename, contentType string, r io.Reader) (*domain.UserProfile, error) {
			gotFilename = filename
			if _, err := io.Copy(io.Discard, r); err != nil {
				return nil, err
			}
			profile, err := domain.NewUserProfile(gotID)
			require.NoError(t, err)
			profile.ResumeRef = "gs://bucket/resumes/" + filename
			return profile, nil
		},
	}
	handler := NewProfileHandler(svc)

	body, contentType := multipartResume(t, "resume", "cv.pdf", "%PDF-1.4 fake")
	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodPost, "/profile/resume", body, userID)
	r.Header.Set("Content-Type", contentType)
	handler.UploadResume(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cv.pdf", gotFilename)

	var resp domain.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "gs://bucket/resumes/cv.pdf", resp.ResumeRef)
}

func TestUploadResumeMissingFile(t *testing.T) {
	t.Parallel()

	handler := NewProfileHandler(&mockProfileService{})

	body, contentType := multipartResume(t, "attachment", "cv.pdf", "data")
	w := httptest.NewRecorder()
	r := authenticatedRequest(t, http.MethodPost, "/profile/resume", body, uuid.New())
	r.Header.Set("Content-Type", contentType)
	handler.UploadResume(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
