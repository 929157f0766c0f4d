package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for UserProfile
var (
	ErrEmptyProfileID     = errors.New("profile ID cannot be empty")
	ErrEmptyProfileUserID = errors.New("profile user ID cannot be empty")
)

// WorkExperience is one entry in a profile's employment history.
type WorkExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one entry in a profile's education history.
type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
}

// UserProfile holds the structured data used to fill application forms
// on the user's behalf. One profile exists per user, created empty at
// registration time. ResumeRef is an opaque storage reference (typically
// a gs:// URI) resolved to a local file by the worker when needed.
//
// Address is deliberately schemaless: application forms disagree about
// address structure, so arbitrary nested keys must round-trip unchanged.
type UserProfile struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Address        map[string]any    `json:"address,omitempty"`
	LinkedInURL    string            `json:"linkedin_url,omitempty"`
	PortfolioURL   string            `json:"portfolio_url,omitempty"`
	ResumeRef      string            `json:"resume_ref,omitempty"`
	WorkExperience []WorkExperience  `json:"work_experience,omitempty"`
	Education      []Education       `json:"education,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	CommonQnA      map[string]string `json:"common_qna,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewUserProfile creates an empty profile owned by the given user.
func NewUserProfile(userID uuid.UUID) (*UserProfile, error) {
	profile := &UserProfile{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the UserProfile has valid data.
func (p *UserProfile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyProfileUserID
	}

	return nil
}

// ProfileSnapshot is the read-only view of a profile handed to the worker
// for one processing attempt. It carries the owner's email alongside the
// profile so the flattened field bag is self-contained.
type ProfileSnapshot struct {
	Email   string
	Profile UserProfile
}
