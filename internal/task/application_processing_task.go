package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/redact"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Status constants mirroring the TaskStatus values in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilApplicationService = errors.New("application service cannot be nil")
	ErrNilSnapshotProvider   = errors.New("snapshot provider cannot be nil")
	ErrNilFormFiller         = errors.New("form filler cannot be nil")
	ErrNilLogger             = errors.New("logger cannot be nil")
	ErrEmptyTargetID         = errors.New("application ID cannot be empty")
)

// ApplicationService is the narrow view of application state the processor
// needs. The worker boundary carries only the application ID; everything
// else is re-read through this interface at execution time.
type ApplicationService interface {
	// GetApplication retrieves an application by ID without owner scoping.
	GetApplication(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error)

	// UpdateApplicationStatus overwrites the application's status and
	// error message.
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, errorMessage string) error

	// RecordExtracted stores the job title and company name captured
	// during form filling. Empty values leave existing data untouched.
	RecordExtracted(ctx context.Context, id uuid.UUID, title, company string) error
}

// SnapshotProvider supplies the read-only profile snapshot used to fill
// a form on the owner's behalf.
type SnapshotProvider interface {
	// GetSnapshot returns the owner's profile joined with their account
	// email. Returns a store not-found error when no profile exists.
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error)
}

// ResolvedDocument is a local file produced by resolving a storage
// reference. Release removes the local copy; it is best-effort and safe
// to call exactly once.
type ResolvedDocument interface {
	Path() string
	Release(ctx context.Context)
}

// DocumentResolver turns an opaque storage reference (typically a gs://
// URI) into a local file the browser agent can attach to a form.
type DocumentResolver interface {
	Resolve(ctx context.Context, ref string) (ResolvedDocument, error)
}

// Stages a form-filling attempt can fail in. The stage determines which
// terminal status the application lands in.
const (
	StageParsing    = "parsing"
	StageFilling    = "filling"
	StageSubmission = "submission"
)

// FillRequest carries everything the form-filling agent needs for one
// attempt: the posting URL, the flattened profile field bag, and an
// optional local resume path ("" when no resume is available).
type FillRequest struct {
	JobURL     string
	Fields     map[string]string
	ResumePath string
}

// FillOutcome is the structured result of one form-filling attempt.
type FillOutcome struct {
	// Success reports whether the form was filled and submitted.
	Success bool

	// JobTitle and CompanyName are extracted from the posting when the
	// agent can identify them; empty otherwise.
	JobTitle    string
	CompanyName string

	// NeedsReview is set when the agent filled the form but stopped
	// short of submitting, e.g. a CAPTCHA or a field it could not
	// answer confidently.
	NeedsReview bool

	// FailureReason describes why the attempt failed; empty on success.
	FailureReason string

	// FailedStage names the stage the attempt failed in (StageParsing,
	// StageFilling, or StageSubmission); empty on success.
	FailedStage string
}

// FormFiller executes one form-filling attempt against a job posting.
type FormFiller interface {
	Fill(ctx context.Context, req FillRequest) (*FillOutcome, error)
}

// applicationProcessingPayload is the serialized data stored with the task
type applicationProcessingPayload struct {
	ApplicationID uuid.UUID `json:"application_id"`
}

// ApplicationProcessingTask implements the Task interface for processing
// one job application: it re-reads the application, snapshots the owner's
// profile, resolves the resume, runs the form-filling agent under a
// bounded timeout, and records the terminal outcome.
//
// Execution is idempotent in the at-least-once sense: all state is
// re-derived from the store on every delivery, each delivery runs a full
// attempt, and the record always reflects the most recent attempt's
// outcome. A redelivery after a terminal status re-attempts rather than
// corrupting the record.
type ApplicationProcessingTask struct {
	id              uuid.UUID
	applicationID   uuid.UUID
	apps            ApplicationService
	snapshots       SnapshotProvider
	resolver        DocumentResolver
	filler          FormFiller
	executorTimeout time.Duration
	logger          *slog.Logger
	status          string
}

// NewApplicationProcessingTask creates a new application processing task.
// The resolver may be nil when resume handling is disabled; every other
// dependency is required.
func NewApplicationProcessingTask(
	applicationID uuid.UUID,
	apps ApplicationService,
	snapshots SnapshotProvider,
	resolver DocumentResolver,
	filler FormFiller,
	executorTimeout time.Duration,
	logger *slog.Logger,
) (*ApplicationProcessingTask, error) {
	return newApplicationProcessingTask(
		uuid.New(), applicationID, apps, snapshots, resolver, filler, executorTimeout, logger,
	)
}

// RehydrateApplicationProcessingTask rebuilds a task recovered from the
// database, preserving its persisted task ID so status updates keep
// targeting the original row.
func RehydrateApplicationProcessingTask(
	taskID uuid.UUID,
	payload []byte,
	apps ApplicationService,
	snapshots SnapshotProvider,
	resolver DocumentResolver,
	filler FormFiller,
	executorTimeout time.Duration,
	logger *slog.Logger,
) (*ApplicationProcessingTask, error) {
	var p applicationProcessingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	return newApplicationProcessingTask(
		taskID, p.ApplicationID, apps, snapshots, resolver, filler, executorTimeout, logger,
	)
}

func newApplicationProcessingTask(
	taskID uuid.UUID,
	applicationID uuid.UUID,
	apps ApplicationService,
	snapshots SnapshotProvider,
	resolver DocumentResolver,
	filler FormFiller,
	executorTimeout time.Duration,
	logger *slog.Logger,
) (*ApplicationProcessingTask, error) {
	if apps == nil {
		return nil, ErrNilApplicationService
	}
	if snapshots == nil {
		return nil, ErrNilSnapshotProvider
	}
	if filler == nil {
		return nil, ErrNilFormFiller
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if applicationID == uuid.Nil {
		return nil, ErrEmptyTargetID
	}
	if executorTimeout <= 0 {
		executorTimeout = 5 * time.Minute
	}

	return &ApplicationProcessingTask{
		id:              taskID,
		applicationID:   applicationID,
		apps:            apps,
		snapshots:       snapshots,
		resolver:        resolver,
		filler:          filler,
		executorTimeout: executorTimeout,
		logger: logger.With(
			"task_type", TaskTypeApplicationProcessing,
			"application_id", applicationID,
		),
		status: statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ApplicationProcessingTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ApplicationProcessingTask) Type() string {
	return TaskTypeApplicationProcessing
}

// Payload returns the task data as a byte slice
func (t *ApplicationProcessingTask) Payload() []byte {
	payload := applicationProcessingPayload{
		ApplicationID: t.applicationID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *ApplicationProcessingTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs one processing attempt for the application. It never
// returns an error for outcomes that are terminal application states
// (those are recorded on the application itself); errors are reserved for
// infrastructure failures that should mark the task failed.
func (t *ApplicationProcessingTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting application processing task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Re-read the application. A missing row means it was deleted
	// after being queued; there is nothing to record the outcome on, so
	// the attempt is abandoned without error.
	app, err := t.apps.GetApplication(ctx, t.applicationID)
	if err != nil {
		if store.IsNotFoundError(err) {
			t.status = statusCompleted
			t.logger.Warn("application no longer exists, abandoning attempt")
			return nil
		}
		t.status = statusFailed
		t.logger.Error("failed to load application", "error", err)
		return fmt.Errorf("failed to load application: %w", err)
	}

	// A redelivery may find the record already terminal. The attempt still
	// runs in full so the record ends up matching the latest delivery.
	if app.Status.Terminal() {
		t.logger.Info("re-attempting application in terminal state",
			"status", string(app.Status))
	}

	// 2. Snapshot the owner's profile. No profile means the form cannot
	// be filled; that is a terminal outcome for the application, not an
	// infrastructure failure.
	snapshot, err := t.snapshots.GetSnapshot(ctx, app.OwnerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			t.logger.Warn("owner has no profile, failing application")
			return t.finish(ctx, domain.ApplicationStatusFillingFailed, "profile data missing", nil)
		}
		t.status = statusFailed
		t.logger.Error("failed to load profile snapshot", "error", err)
		return fmt.Errorf("failed to load profile snapshot: %w", err)
	}

	// 3. Mark the application as processing before the long-running part.
	if err := t.apps.UpdateApplicationStatus(ctx, t.applicationID, domain.ApplicationStatusProcessing, ""); err != nil {
		t.status = statusFailed
		t.logger.Error("failed to mark application processing", "error", err)
		return fmt.Errorf("failed to mark application processing: %w", err)
	}

	fields := domain.Flatten(*snapshot)

	// 4. Resolve the resume to a local file. Resolution failure degrades
	// the attempt rather than aborting it: the agent proceeds without an
	// attachment.
	resumePath := ""
	if t.resolver != nil && snapshot.Profile.ResumeRef != "" {
		doc, err := t.resolver.Resolve(ctx, snapshot.Profile.ResumeRef)
		if err != nil {
			t.logger.Warn("failed to resolve resume, continuing without it",
				"error", redact.Error(err))
		} else {
			resumePath = doc.Path()
			defer doc.Release(context.WithoutCancel(ctx))
		}
	}

	// The agent only ever sees the local path, never the storage
	// reference the bag was flattened with.
	fields["resume_ref"] = resumePath

	// 5. Run the agent under a bounded timeout.
	fillCtx, cancel := context.WithTimeout(ctx, t.executorTimeout)
	defer cancel()

	outcome, err := t.filler.Fill(fillCtx, FillRequest{
		JobURL:     app.JobURL,
		Fields:     fields,
		ResumePath: resumePath,
	})
	if err != nil {
		t.logger.Error("form filling attempt failed", "error", redact.Error(err))
		reason := redact.Error(err)
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("form filling timed out after %s", t.executorTimeout)
		}
		return t.finish(ctx, domain.ApplicationStatusSubmissionFailed, reason, nil)
	}

	// 6. Classify the structured outcome.
	status, message := classifyOutcome(outcome)
	return t.finish(ctx, status, message, outcome)
}

// classifyOutcome maps a fill outcome to the application's terminal
// status and error message.
func classifyOutcome(outcome *FillOutcome) (domain.ApplicationStatus, string) {
	if outcome.Success {
		if outcome.NeedsReview {
			return domain.ApplicationStatusNeedsReview, outcome.FailureReason
		}
		return domain.ApplicationStatusSubmitted, ""
	}

	switch outcome.FailedStage {
	case StageParsing:
		return domain.ApplicationStatusParsingFailed, outcome.FailureReason
	case StageFilling:
		return domain.ApplicationStatusFillingFailed, outcome.FailureReason
	default:
		return domain.ApplicationStatusSubmissionFailed, outcome.FailureReason
	}
}

// finish records the extracted fields and the terminal status. The status
// write is retried with backoff: losing a finished attempt's outcome is
// strictly worse than the extra writes, and the write is idempotent.
func (t *ApplicationProcessingTask) finish(
	ctx context.Context,
	status domain.ApplicationStatus,
	message string,
	outcome *FillOutcome,
) error {
	if outcome != nil && (outcome.JobTitle != "" || outcome.CompanyName != "") {
		if err := t.apps.RecordExtracted(ctx, t.applicationID, outcome.JobTitle, outcome.CompanyName); err != nil {
			// Extracted metadata is nice to have; the terminal status is not.
			t.logger.Warn("failed to record extracted fields", "error", err)
		}
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := t.apps.UpdateApplicationStatus(ctx, t.applicationID, status, message); err != nil {
			if store.IsNotFoundError(err) {
				// Row deleted mid-attempt; nowhere to write the outcome.
				return nil
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		t.status = statusFailed
		t.logger.Error("failed to record final application status",
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to record final application status %s: %w", status, err)
	}

	t.status = statusCompleted
	t.logger.Info("application processing finished",
		"status", string(status))
	return nil
}
