package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/applyflow/applyflow-api/internal/domain"
	"github.com/applyflow/applyflow-api/internal/events"
	"github.com/applyflow/applyflow-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeDriver is a no-op database/sql driver. Service tests mock the store
// layer, so transactions only need Begin/Commit/Rollback plumbing that
// always succeeds.
type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

var registerFakeDriver sync.Once

func newFakeDB(t *testing.T) *sql.DB {
	t.Helper()
	registerFakeDriver.Do(func() {
		sql.Register("servicetest", fakeDriver{})
	})
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// mockUserStore is an in-memory store.UserStore.
type mockUserStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	createErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	email := strings.ToLower(user.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return store.ErrEmailExists
		}
	}
	stored := *user
	stored.Email = email
	stored.HashedPassword = "hashed:" + user.Password
	stored.Password = ""
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockProfileStore is an in-memory store.ProfileStore keyed by user ID.
type mockProfileStore struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*domain.UserProfile
	updateErr error
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[uuid.UUID]*domain.UserProfile)}
}

func (m *mockProfileStore) Create(ctx context.Context, profile *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; ok {
		return store.ErrDuplicate
	}
	clone := *profile
	m.profiles[profile.UserID] = &clone
	return nil
}

func (m *mockProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	clone := *profile
	return &clone, nil
}

func (m *mockProfileStore) Update(ctx context.Context, profile *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.profiles[profile.UserID]; !ok {
		return store.ErrProfileNotFound
	}
	clone := *profile
	m.profiles[profile.UserID] = &clone
	return nil
}

func (m *mockProfileStore) WithTx(tx *sql.Tx) store.ProfileStore { return m }

// mockApplicationStore is an in-memory store.ApplicationStore.
type mockApplicationStore struct {
	mu              sync.Mutex
	apps            map[uuid.UUID]*domain.JobApplication
	createErr       error
	updateStatusErr error
}

func newMockApplicationStore() *mockApplicationStore {
	return &mockApplicationStore{apps: make(map[uuid.UUID]*domain.JobApplication)}
}

func (m *mockApplicationStore) Create(ctx context.Context, app *domain.JobApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	clone := *app
	m.apps[app.ID] = &clone
	return nil
}

func (m *mockApplicationStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok || app.OwnerID != ownerID {
		return nil, store.ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

func (m *mockApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, store.ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

func (m *mockApplicationStore) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.JobApplication{}
	for _, app := range m.apps {
		if app.OwnerID == ownerID {
			clone := *app
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *mockApplicationStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ApplicationStatus,
	errorMessage string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	app, ok := m.apps[id]
	if !ok {
		return store.ErrApplicationNotFound
	}
	app.Status = status
	app.ErrorMessage = errorMessage
	return nil
}

func (m *mockApplicationStore) SetExtracted(ctx context.Context, id uuid.UUID, title, company string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return store.ErrApplicationNotFound
	}
	if title != "" {
		app.ExtractedJobTitle = title
	}
	if company != "" {
		app.ExtractedCompanyName = company
	}
	return nil
}

func (m *mockApplicationStore) WithTx(tx *sql.Tx) store.ApplicationStore { return m }

// mockEmitter records emitted events.
type mockEmitter struct {
	mu      sync.Mutex
	events  []*events.TaskRequestEvent
	emitErr error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emitErr != nil {
		return m.emitErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEmitter) emitted() []*events.TaskRequestEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.TaskRequestEvent{}, m.events...)
}

// mockResumeStorage returns a deterministic reference per upload.
type mockResumeStorage struct {
	uploadErr error
	lastName  string
	lastType  string
}

func (m *mockResumeStorage) UploadResume(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	r io.Reader,
) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.lastName = filename
	m.lastType = contentType
	return fmt.Sprintf("gs://test-bucket/resumes/%s/%s", userID, filename), nil
}
