package api

import (
	"net/http"

	"github.com/applyflow/applyflow-api/internal/api/shared"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/google/uuid"
)

// maxResumeUploadBytes caps the accepted resume document size.
const maxResumeUploadBytes = 10 << 20 // 10 MiB

// ProfileHandler handles profile-related API requests.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler with the given dependencies.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile handles GET /profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		respondWithMappedError(w, r, err, "Failed to retrieve profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// UpdateProfile handles PUT /profile. The submitted fields replace the
// stored ones in a single write.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), userID, req.toDomain())
	if err != nil {
		respondWithMappedError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// UploadResume handles POST /profile/resume. The resume arrives as a
// multipart form with a "resume" file field; it is stored and its reference
// recorded on the profile.
func (h *ProfileHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeUploadBytes)
	if err := r.ParseMultipartForm(maxResumeUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing resume file")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	profile, err := h.profileService.AttachResume(r.Context(), userID, header.Filename, contentType, file)
	if err != nil {
		respondWithMappedError(w, r, err, "Failed to store resume")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// requireUserID extracts the authenticated user ID from the request
// context, writing a 401 if it is absent.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// respondWithMappedError translates a service error into an HTTP response,
// logging unexpected failures.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
}
