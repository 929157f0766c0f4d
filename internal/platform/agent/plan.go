package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors returned by the planning side of the agent.
var (
	// ErrEmptyResponse is returned when the model produced no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrInvalidPlan is returned when the model's output cannot be parsed
	// into a fill plan.
	ErrInvalidPlan = errors.New("model returned an invalid fill plan")
)

// FormField describes one input discovered on the application form. The
// planner sees this inventory, never the raw page.
type FormField struct {
	// Selector uniquely locates the input on the page.
	Selector string `json:"selector"`

	// Type is the input type: text, email, tel, textarea, select, file,
	// checkbox, radio.
	Type string `json:"type"`

	// Label is the human-visible label or placeholder, when one exists.
	Label string `json:"label,omitempty"`

	// Options lists the choices for select inputs.
	Options []string `json:"options,omitempty"`

	// Required marks inputs the form will not submit without.
	Required bool `json:"required,omitempty"`
}

// PlanAction is one instruction in a fill plan: put Value into the input
// at Selector. For file inputs Value is ignored and the resolved resume
// is attached instead.
type PlanAction struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// FillPlan is the model's declarative answer: which inputs to fill with
// what, where to click to submit, and what it learned about the posting.
type FillPlan struct {
	// Actions are applied in order before submitting.
	Actions []PlanAction `json:"actions"`

	// SubmitSelector locates the form's submit control. Empty when the
	// model could not identify one.
	SubmitSelector string `json:"submit_selector"`

	// JobTitle and CompanyName are extracted from the posting text when
	// identifiable.
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`

	// NeedsReview is set when the model could not confidently answer a
	// required field; the form is filled but not submitted.
	NeedsReview bool `json:"needs_review"`

	// ReviewReason explains why NeedsReview was set.
	ReviewReason string `json:"review_reason"`
}

// promptTemplate is the instruction block sent to the model ahead of the
// form inventory and candidate data.
const promptTemplate = `You are filling a job application form on behalf of a candidate.

Below is the form's field inventory and the candidate's profile data as
flat key/value pairs. Produce a JSON object with this exact shape:

{
  "actions": [{"selector": "<field selector>", "value": "<text to enter>"}],
  "submit_selector": "<selector of the submit control, or empty>",
  "job_title": "<job title from the posting, or empty>",
  "company_name": "<company name from the posting, or empty>",
  "needs_review": <true if any required field cannot be answered confidently>,
  "review_reason": "<why needs_review is true, or empty>"
}

Rules:
- Only use selectors from the field inventory.
- Skip file inputs; the resume attachment is handled separately.
- For select fields choose the closest option verbatim.
- Answer open questions using the candidate's stored answers when a
  matching one exists (keys starting with common_qna).
- If a required field has no answer in the candidate data, set
  needs_review to true and explain in review_reason.
- Respond with JSON only, no commentary.`

// BuildPrompt renders the planning prompt from the page context, the form
// inventory, and the flattened candidate fields. Candidate fields are
// emitted in sorted key order so identical inputs yield identical prompts.
func BuildPrompt(pageTitle, jobURL string, fields []FormField, candidate map[string]string) (string, error) {
	inventory, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal form inventory: %w", err)
	}

	keys := make([]string, 0, len(candidate))
	for k := range candidate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(promptTemplate)
	b.WriteString("\n\nPage title: ")
	b.WriteString(pageTitle)
	b.WriteString("\nPosting URL: ")
	b.WriteString(jobURL)
	b.WriteString("\n\nForm inventory:\n")
	b.Write(inventory)
	b.WriteString("\n\nCandidate data:\n")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(candidate[k])
		b.WriteString("\n")
	}

	return b.String(), nil
}

// ParsePlan decodes the model's response text into a FillPlan. Markdown
// code fences are tolerated since models add them despite instructions.
func ParsePlan(text string) (*FillPlan, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var plan FillPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	return &plan, nil
}
