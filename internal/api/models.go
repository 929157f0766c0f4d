package api

import (
	"time"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
// All fields are replaced in one write; the resume reference is managed by
// the resume upload endpoint and ignored here.
type UpdateProfileRequest struct {
	FirstName      string                  `json:"first_name"`
	LastName       string                  `json:"last_name"`
	Phone          string                  `json:"phone"`
	Address        map[string]any          `json:"address"`
	LinkedInURL    string                  `json:"linkedin_url"`
	PortfolioURL   string                  `json:"portfolio_url"`
	WorkExperience []domain.WorkExperience `json:"work_experience"`
	Education      []domain.Education      `json:"education"`
	Skills         []string                `json:"skills"`
	CommonQnA      map[string]string       `json:"common_qna"`
}

// toDomain converts the request into a domain profile for the service layer.
func (r *UpdateProfileRequest) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Phone:          r.Phone,
		Address:        r.Address,
		LinkedInURL:    r.LinkedInURL,
		PortfolioURL:   r.PortfolioURL,
		WorkExperience: r.WorkExperience,
		Education:      r.Education,
		Skills:         r.Skills,
		CommonQnA:      r.CommonQnA,
	}
}

// SubmitApplicationRequest defines the payload for submitting a job URL.
type SubmitApplicationRequest struct {
	JobURL string `json:"job_url" validate:"required,url"`
}

// ApplicationResponse is the wire shape of one job application.
type ApplicationResponse struct {
	ID                   uuid.UUID  `json:"id"`
	JobURL               string     `json:"job_url"`
	Status               string     `json:"status"`
	SubmissionTimestamp  *time.Time `json:"submission_timestamp,omitempty"`
	ExtractedJobTitle    string     `json:"extracted_job_title,omitempty"`
	ExtractedCompanyName string     `json:"extracted_company_name,omitempty"`
	ErrorMessage         string     `json:"error_message,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// newApplicationResponse maps a domain application onto the wire shape.
// The owner ID is implied by the authenticated request and not repeated.
func newApplicationResponse(app *domain.JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                   app.ID,
		JobURL:               app.JobURL,
		Status:               string(app.Status),
		SubmissionTimestamp:  app.SubmissionTimestamp,
		ExtractedJobTitle:    app.ExtractedJobTitle,
		ExtractedCompanyName: app.ExtractedCompanyName,
		ErrorMessage:         app.ErrorMessage,
		CreatedAt:            app.CreatedAt,
		UpdatedAt:            app.UpdatedAt,
	}
}

// ApplicationListResponse wraps a page of applications.
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Offset       int                   `json:"offset"`
	Limit        int                   `json:"limit"`
}
