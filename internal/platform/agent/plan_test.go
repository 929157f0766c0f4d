package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	fields := []FormField{
		{Selector: "#name", Type: "text", Label: "Full name", Required: true},
		{Selector: "select[name=\"country\"]", Type: "select", Options: []string{"US", "DE"}},
	}
	candidate := map[string]string{
		"first_name":             "Dana",
		"email":                  "candidate@example.com",
		"common_qna.visa_status": "citizen",
	}

	prompt, err := BuildPrompt("Backend Engineer - Acme", "https://jobs.example.com/123", fields, candidate)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Page title: Backend Engineer - Acme")
	assert.Contains(t, prompt, "Posting URL: https://jobs.example.com/123")
	assert.Contains(t, prompt, "#name")
	assert.Contains(t, prompt, "common_qna.visa_status: citizen")

	// Candidate keys are emitted sorted, so two builds over the same map
	// produce byte-identical prompts.
	again, err := BuildPrompt("Backend Engineer - Acme", "https://jobs.example.com/123", fields, candidate)
	require.NoError(t, err)
	assert.Equal(t, prompt, again)
}

func TestBuildPromptEmptyInventory(t *testing.T) {
	t.Parallel()

	prompt, err := BuildPrompt("Title", "https://example.com", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Form inventory:")
}

func TestParsePlan(t *testing.T) {
	t.Parallel()

	const raw = `{
		"actions": [{"selector": "#name", "value": "Dana Smith"}],
		"submit_selector": "button[type=\"submit\"]",
		"job_title": "Backend Engineer",
		"company_name": "Acme",
		"needs_review": false,
		"review_reason": ""
	}`

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "#name", plan.Actions[0].Selector)
	assert.Equal(t, "Dana Smith", plan.Actions[0].Value)
	assert.Equal(t, "button[type=\"submit\"]", plan.SubmitSelector)
	assert.Equal(t, "Backend Engineer", plan.JobTitle)
	assert.Equal(t, "Acme", plan.CompanyName)
	assert.False(t, plan.NeedsReview)
}

func TestParsePlanStripsCodeFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"actions\": [], \"submit_selector\": \"#go\", \"needs_review\": true, \"review_reason\": \"salary question\"}\n```"

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	assert.Equal(t, "#go", plan.SubmitSelector)
	assert.True(t, plan.NeedsReview)
	assert.Equal(t, "salary question", plan.ReviewReason)
}

func TestParsePlanEmptyResponse(t *testing.T) {
	t.Parallel()

	_, err := ParsePlan("   \n  ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParsePlanInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := ParsePlan("I cannot fill this form, sorry.")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}
