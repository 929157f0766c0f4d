package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/applyflow/applyflow-api/internal/task"
	"github.com/playwright-community/playwright-go"
)

// PlanSource produces a fill plan for a prompt. Satisfied by *Planner;
// factored out so the filler is testable without the Gemini API.
type PlanSource interface {
	Plan(ctx context.Context, prompt string) (*FillPlan, error)
}

// BrowserFormFiller implements task.FormFiller: it navigates to the
// posting with a pooled browser session, inventories the application
// form, obtains a fill plan from the planner, applies it, and submits.
type BrowserFormFiller struct {
	pool    *SessionPool
	planner PlanSource
	logger  *slog.Logger
}

// NewBrowserFormFiller creates a form filler on top of the session pool
// and planner.
func NewBrowserFormFiller(pool *SessionPool, planner PlanSource, log *slog.Logger) *BrowserFormFiller {
	if log == nil {
		log = slog.Default()
	}
	return &BrowserFormFiller{
		pool:    pool,
		planner: planner,
		logger:  log.With(slog.String("component", "browser_form_filler")),
	}
}

// Ensure BrowserFormFiller implements task.FormFiller
var _ task.FormFiller = (*BrowserFormFiller)(nil)

// failedOutcome builds a non-success outcome for the given stage.
func failedOutcome(stage, reason string) *task.FillOutcome {
	return &task.FillOutcome{
		Success:       false,
		FailureReason: reason,
		FailedStage:   stage,
	}
}

// Fill runs one form-filling attempt. Failures in understanding the page
// are parsing failures; failures entering data are filling failures;
// everything after the first submit interaction is a submission failure.
// An error return is reserved for infrastructure problems (no browser
// session, context cancelled); page-level failures come back as outcomes.
func (f *BrowserFormFiller) Fill(ctx context.Context, req task.FillRequest) (*task.FillOutcome, error) {
	log := logger.FromContextOrDefault(ctx, f.logger)

	session, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	page := session.Page()

	// Navigate to the posting.
	if _, err := page.Goto(req.JobURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		log.Warn("failed to load job posting", slog.String("error", err.Error()))
		return failedOutcome(task.StageParsing, fmt.Sprintf("could not load posting: %v", err)), nil
	}

	pageTitle, _ := page.Title()

	// Inventory the form.
	fields, err := inventoryForm(page)
	if err != nil {
		log.Warn("failed to inventory form", slog.String("error", err.Error()))
		return failedOutcome(task.StageParsing, fmt.Sprintf("could not read application form: %v", err)), nil
	}
	if len(fields) == 0 {
		return failedOutcome(task.StageParsing, "no application form found on page"), nil
	}

	// Plan the fill.
	prompt, err := BuildPrompt(pageTitle, req.JobURL, fields, req.Fields)
	if err != nil {
		return failedOutcome(task.StageFilling, fmt.Sprintf("could not build fill plan: %v", err)), nil
	}

	plan, err := f.planner.Plan(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("planner failed", slog.String("error", err.Error()))
		return failedOutcome(task.StageFilling, fmt.Sprintf("fill planning failed: %v", err)), nil
	}

	// Apply the plan.
	fieldTypes := make(map[string]string, len(fields))
	for _, field := range fields {
		fieldTypes[field.Selector] = field.Type
	}

	applied := 0
	for _, action := range plan.Actions {
		if err := applyAction(page, action, fieldTypes[action.Selector]); err != nil {
			log.Warn("failed to apply fill action",
				slog.String("selector", action.Selector),
				slog.String("error", err.Error()))
			continue
		}
		applied++
	}
	if applied == 0 && len(plan.Actions) > 0 {
		return &task.FillOutcome{
			Success:       false,
			JobTitle:      plan.JobTitle,
			CompanyName:   plan.CompanyName,
			FailureReason: "could not enter data into any form field",
			FailedStage:   task.StageFilling,
		}, nil
	}

	// Attach the resume to the first file input, if both exist.
	if req.ResumePath != "" {
		if fileSelector := firstFileInput(fields); fileSelector != "" {
			if err := page.Locator(fileSelector).SetInputFiles(req.ResumePath); err != nil {
				log.Warn("failed to attach resume",
					slog.String("error", err.Error()))
			}
		}
	}

	// Stop before submitting when the model flagged the attempt or no
	// submit control was identified.
	if plan.NeedsReview || plan.SubmitSelector == "" {
		reason := plan.ReviewReason
		if reason == "" {
			reason = "no submit control identified"
		}
		return &task.FillOutcome{
			Success:       true,
			JobTitle:      plan.JobTitle,
			CompanyName:   plan.CompanyName,
			NeedsReview:   true,
			FailureReason: reason,
		}, nil
	}

	// Submit.
	if err := page.Locator(plan.SubmitSelector).Click(); err != nil {
		log.Warn("failed to click submit", slog.String("error", err.Error()))
		return &task.FillOutcome{
			Success:       false,
			JobTitle:      plan.JobTitle,
			CompanyName:   plan.CompanyName,
			FailureReason: fmt.Sprintf("could not submit form: %v", err),
			FailedStage:   task.StageSubmission,
		}, nil
	}

	if err := page.WaitForLoadState(); err != nil {
		log.Debug("post-submit load wait failed", slog.String("error", err.Error()))
	}

	log.Info("application form submitted",
		slog.Int("fields_filled", applied))
	return &task.FillOutcome{
		Success:     true,
		JobTitle:    plan.JobTitle,
		CompanyName: plan.CompanyName,
	}, nil
}

// applyAction enters one planned value into the page.
func applyAction(page playwright.Page, action PlanAction, fieldType string) error {
	locator := page.Locator(action.Selector)

	switch fieldType {
	case "select":
		_, err := locator.SelectOption(playwright.SelectOptionValues{
			Labels: &[]string{action.Value},
		})
		return err
	case "checkbox", "radio":
		if isAffirmative(action.Value) {
			return locator.Check()
		}
		return nil
	case "file":
		// File inputs are handled by the resume attachment step.
		return nil
	default:
		return locator.Fill(action.Value)
	}
}

func isAffirmative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "on", "checked":
		return true
	}
	return false
}

// firstFileInput returns the selector of the first file input in the
// inventory, or "".
func firstFileInput(fields []FormField) string {
	for _, field := range fields {
		if field.Type == "file" {
			return field.Selector
		}
	}
	return ""
}

// inventoryForm enumerates the fillable inputs of the page's forms.
func inventoryForm(page playwright.Page) ([]FormField, error) {
	locators, err := page.Locator("form input, form textarea, form select").All()
	if err != nil {
		return nil, fmt.Errorf("could not enumerate form inputs: %w", err)
	}

	var fields []FormField
	seen := make(map[string]bool)
	for _, locator := range locators {
		field, ok := describeInput(locator)
		if !ok || seen[field.Selector] {
			continue
		}
		seen[field.Selector] = true
		fields = append(fields, field)
	}

	return fields, nil
}

// describeInput builds a FormField for one located input. Hidden and
// un-addressable inputs are skipped.
func describeInput(locator playwright.Locator) (FormField, bool) {
	tag, err := locator.Evaluate("el => el.tagName.toLowerCase()", nil)
	if err != nil {
		return FormField{}, false
	}
	tagName, _ := tag.(string)

	inputType := tagName
	if tagName == "input" {
		if t, err := locator.GetAttribute("type"); err == nil && t != "" {
			inputType = t
		} else {
			inputType = "text"
		}
	}
	if inputType == "hidden" || inputType == "submit" || inputType == "button" {
		return FormField{}, false
	}

	selector := ""
	if id, err := locator.GetAttribute("id"); err == nil && id != "" {
		selector = "#" + id
	} else if name, err := locator.GetAttribute("name"); err == nil && name != "" {
		selector = fmt.Sprintf("%s[name=%q]", tagName, name)
	} else {
		return FormField{}, false
	}

	label := ""
	if aria, err := locator.GetAttribute("aria-label"); err == nil && aria != "" {
		label = aria
	} else if placeholder, err := locator.GetAttribute("placeholder"); err == nil && placeholder != "" {
		label = placeholder
	}

	required := false
	if r, err := locator.GetAttribute("required"); err == nil && r != "" {
		required = true
	}

	field := FormField{
		Selector: selector,
		Type:     inputType,
		Label:    label,
		Required: required,
	}

	if tagName == "select" {
		if opts, err := locator.Locator("option").AllTextContents(); err == nil {
			field.Options = opts
		}
	}

	return field, true
}
