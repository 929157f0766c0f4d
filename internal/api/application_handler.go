package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/applyflow/applyflow-api/internal/api/shared"
	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ApplicationHandler handles job application API requests.
type ApplicationHandler struct {
	applicationService service.ApplicationService
	validator          *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(applicationService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		validator:          validator.New(),
	}
}

// SubmitApplication handles POST /applications. Processing happens in the
// background, so acceptance is acknowledged with 202 and the application's
// current state.
func (h *ApplicationHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SubmitApplicationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	app, err := h.applicationService.SubmitApplication(r.Context(), userID, req.JobURL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidJobURL) {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		respondWithMappedError(w, r, err, "Failed to submit application")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, newApplicationResponse(app))
}

// GetApplication handles GET /applications/{id}.
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := h.applicationService.GetApplication(r.Context(), userID, id)
	if err != nil {
		respondWithMappedError(w, r, err, "Failed to retrieve application")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newApplicationResponse(app))
}

// ListApplications handles GET /applications with offset/limit paging.
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	offset := parseQueryInt(r, "offset", 0)
	limit := parseQueryInt(r, "limit", defaultListLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	apps, err := h.applicationService.ListApplications(r.Context(), userID, offset, limit)
	if err != nil {
		respondWithMappedError(w, r, err, "Failed to list applications")
		return
	}

	resp := ApplicationListResponse{
		Applications: make([]ApplicationResponse, 0, len(apps)),
		Offset:       offset,
		Limit:        limit,
	}
	for _, app := range apps {
		resp.Applications = append(resp.Applications, newApplicationResponse(app))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// parseQueryInt reads an integer query parameter, falling back to def when
// absent or malformed.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
