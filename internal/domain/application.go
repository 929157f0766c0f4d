package domain

import (
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus represents the lifecycle state of a job application.
type ApplicationStatus string

// The canonical application statuses. RECEIVED and QUEUED are set by the
// submission path; PROCESSING is set by the worker at the start of an
// attempt; the remaining five are terminal for that attempt.
const (
	ApplicationStatusReceived         ApplicationStatus = "RECEIVED"
	ApplicationStatusQueued           ApplicationStatus = "QUEUED"
	ApplicationStatusProcessing       ApplicationStatus = "PROCESSING"
	ApplicationStatusParsingFailed    ApplicationStatus = "PARSING_FAILED"
	ApplicationStatusFillingFailed    ApplicationStatus = "FILLING_FAILED"
	ApplicationStatusNeedsReview      ApplicationStatus = "NEEDS_REVIEW"
	ApplicationStatusSubmitted        ApplicationStatus = "SUBMITTED"
	ApplicationStatusSubmissionFailed ApplicationStatus = "SUBMISSION_FAILED"
)

// Common validation errors for JobApplication
var (
	ErrEmptyApplicationID      = errors.New("application ID cannot be empty")
	ErrEmptyApplicationOwner   = errors.New("application owner ID cannot be empty")
	ErrInvalidJobURL           = errors.New("job URL is not a well-formed URL")
	ErrInvalidApplicationState = errors.New("invalid application status")
)

// JobApplication is the persisted record of one submitted job-application
// URL and its processing outcome. The job URL is immutable after creation;
// extracted fields are set by the worker and never cleared once set.
type JobApplication struct {
	ID                   uuid.UUID         `json:"id"`
	OwnerID              uuid.UUID         `json:"owner_id"`
	JobURL               string            `json:"job_url"`
	Status               ApplicationStatus `json:"status"`
	SubmissionTimestamp  *time.Time        `json:"submission_timestamp,omitempty"`
	ExtractedJobTitle    string            `json:"extracted_job_title,omitempty"`
	ExtractedCompanyName string            `json:"extracted_company_name,omitempty"`
	ErrorMessage         string            `json:"error_message,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewJobApplication creates a JobApplication in the RECEIVED state for the
// given owner and job URL. Returns ErrInvalidJobURL if the URL is not a
// well-formed absolute http(s) URL.
func NewJobApplication(ownerID uuid.UUID, jobURL string) (*JobApplication, error) {
	app := &JobApplication{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		JobURL:    jobURL,
		Status:    ApplicationStatusReceived,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}

	return app, nil
}

// Validate checks if the JobApplication has valid data.
// Returns an error if any field fails validation.
func (a *JobApplication) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyApplicationID
	}

	if a.OwnerID == uuid.Nil {
		return ErrEmptyApplicationOwner
	}

	if !ValidJobURL(a.JobURL) {
		return ErrInvalidJobURL
	}

	if !a.Status.Valid() {
		return ErrInvalidApplicationState
	}

	return nil
}

// Valid reports whether the status is one of the canonical eight values.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusReceived, ApplicationStatusQueued, ApplicationStatusProcessing,
		ApplicationStatusParsingFailed, ApplicationStatusFillingFailed,
		ApplicationStatusNeedsReview, ApplicationStatusSubmitted,
		ApplicationStatusSubmissionFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the current processing attempt.
// No automatic re-queue happens past a terminal status; re-submission is an
// external decision.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusNeedsReview,
		ApplicationStatusParsingFailed, ApplicationStatusFillingFailed,
		ApplicationStatusSubmissionFailed:
		return true
	default:
		return false
	}
}

// ValidJobURL reports whether raw parses as an absolute http or https URL
// with a host.
func ValidJobURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
