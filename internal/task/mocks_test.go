package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/google/uuid"
)

// mockApplicationService is a func-field mock of ApplicationService that
// records every status write in order.
type mockApplicationService struct {
	mu sync.Mutex

	GetApplicationFunc func(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error)
	UpdateStatusFunc   func(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, errorMessage string) error
	RecordExtractedFn  func(ctx context.Context, id uuid.UUID, title, company string) error

	StatusWrites []statusWrite
	Extracted    []extractedWrite
}

type statusWrite struct {
	ID      uuid.UUID
	Status  domain.ApplicationStatus
	Message string
}

type extractedWrite struct {
	ID      uuid.UUID
	Title   string
	Company string
}

func (m *mockApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	return m.GetApplicationFunc(ctx, id)
}

func (m *mockApplicationService) UpdateApplicationStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ApplicationStatus,
	errorMessage string,
) error {
	m.mu.Lock()
	m.StatusWrites = append(m.StatusWrites, statusWrite{ID: id, Status: status, Message: errorMessage})
	m.mu.Unlock()

	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, errorMessage)
	}
	return nil
}

func (m *mockApplicationService) RecordExtracted(ctx context.Context, id uuid.UUID, title, company string) error {
	m.mu.Lock()
	m.Extracted = append(m.Extracted, extractedWrite{ID: id, Title: title, Company: company})
	m.mu.Unlock()

	if m.RecordExtractedFn != nil {
		return m.RecordExtractedFn(ctx, id, title, company)
	}
	return nil
}

// lastStatus returns the most recent status write, if any.
func (m *mockApplicationService) lastStatus() (statusWrite, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.StatusWrites) == 0 {
		return statusWrite{}, false
	}
	return m.StatusWrites[len(m.StatusWrites)-1], true
}

// mockSnapshotProvider is a func-field mock of SnapshotProvider.
type mockSnapshotProvider struct {
	GetSnapshotFunc func(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error)
}

func (m *mockSnapshotProvider) GetSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ProfileSnapshot, error) {
	return m.GetSnapshotFunc(ctx, userID)
}

// mockResolvedDocument tracks Release calls.
type mockResolvedDocument struct {
	path     string
	released bool
}

func (d *mockResolvedDocument) Path() string { return d.path }

func (d *mockResolvedDocument) Release(ctx context.Context) { d.released = true }

// mockDocumentResolver is a func-field mock of DocumentResolver.
type mockDocumentResolver struct {
	ResolveFunc func(ctx context.Context, ref string) (ResolvedDocument, error)
}

func (m *mockDocumentResolver) Resolve(ctx context.Context, ref string) (ResolvedDocument, error) {
	return m.ResolveFunc(ctx, ref)
}

// mockFormFiller is a func-field mock of FormFiller that records the last
// request it received.
type mockFormFiller struct {
	FillFunc    func(ctx context.Context, req FillRequest) (*FillOutcome, error)
	LastRequest *FillRequest
}

func (m *mockFormFiller) Fill(ctx context.Context, req FillRequest) (*FillOutcome, error) {
	m.LastRequest = &req
	return m.FillFunc(ctx, req)
}

// mockTrackedTask is a minimal Task for queue and runner tests.
type mockTrackedTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	executeFn func(ctx context.Context) error
	executed  int
	mu        sync.Mutex
}

func newMockTrackedTask(executeFn func(ctx context.Context) error) *mockTrackedTask {
	return &mockTrackedTask{
		id:        uuid.New(),
		taskType:  TaskTypeApplicationProcessing,
		payload:   []byte(`{}`),
		status:    TaskStatusPending,
		executeFn: executeFn,
	}
}

func (t *mockTrackedTask) ID() uuid.UUID      { return t.id }
func (t *mockTrackedTask) Type() string       { return t.taskType }
func (t *mockTrackedTask) Payload() []byte    { return t.payload }
func (t *mockTrackedTask) Status() TaskStatus { return t.status }

func (t *mockTrackedTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.executed++
	t.mu.Unlock()
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	return nil
}

func (t *mockTrackedTask) executions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executed
}

// mockTaskStore is an in-memory task.TaskStore for runner tests.
type mockTaskStore struct {
	mu       sync.Mutex
	saved    []Task
	statuses map[uuid.UUID]TaskStatus

	pending    []Task
	processing []Task

	saveErr error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{statuses: make(map[uuid.UUID]TaskStatus)}
}

func (s *mockTaskStore) SaveTask(ctx context.Context, t Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, t)
	s.statuses[t.ID()] = t.Status()
	return nil
}

func (s *mockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[taskID] = status
	return nil
}

func (s *mockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.pending...), nil
}

func (s *mockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.processing...), nil
}

func (s *mockTaskStore) WithTx(tx *sql.Tx) TaskStore { return s }

func (s *mockTaskStore) statusOf(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}
