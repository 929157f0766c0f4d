package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            1,
		QueueSize:              10,
		StuckTaskAge:           time.Minute,
		StuckTaskCheckInterval: time.Hour,
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTaskRunnerSubmitAndProcess(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockTaskStore()
	runner := NewTaskRunner(store, runnerConfig(), logger)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	task := newMockTrackedTask(nil)
	require.NoError(t, runner.Submit(context.Background(), task))

	waitFor(t, func() bool { return task.executions() == 1 })
	waitFor(t, func() bool { return store.statusOf(task.ID()) == TaskStatusCompleted })
}

func TestTaskRunnerMarksFailedTasks(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockTaskStore()
	runner := NewTaskRunner(store, runnerConfig(), logger)

	var handled Task
	runner.SetErrorHandler(func(task Task, err error) { handled = task })

	require.NoError(t, runner.Start())
	defer runner.Stop()

	task := newMockTrackedTask(func(ctx context.Context) error {
		return errors.New("agent blew up")
	})
	require.NoError(t, runner.Submit(context.Background(), task))

	waitFor(t, func() bool { return store.statusOf(task.ID()) == TaskStatusFailed })
	assert.Equal(t, task.ID(), handled.ID())
}

func TestTaskRunnerSubmitFailsWhenSaveFails(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockTaskStore()
	store.saveErr = errors.New("insert failed")
	runner := NewTaskRunner(store, runnerConfig(), logger)

	err := runner.Submit(context.Background(), newMockTrackedTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save task")
}

func TestTaskRunnerRecovery(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockTaskStore()

	pending := newMockTrackedTask(nil)
	interrupted := newMockTrackedTask(nil)
	interrupted.status = TaskStatusProcessing
	store.pending = []Task{pending}
	store.processing = []Task{interrupted}

	runner := NewTaskRunner(store, runnerConfig(), logger)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	// Both the pending and the interrupted task run again.
	waitFor(t, func() bool { return pending.executions() == 1 })
	waitFor(t, func() bool { return interrupted.executions() == 1 })
}

func TestTaskRunnerRehydratesRecoveredTasks(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockTaskStore()

	carrier := newMockTrackedTask(func(ctx context.Context) error {
		return errors.New("carrier must not execute")
	})
	store.pending = []Task{carrier}

	rebuilt := newMockTrackedTask(nil)
	runner := NewTaskRunner(store, runnerConfig(), logger)
	runner.SetRehydrator(func(id uuid.UUID, taskType string, payload []byte) (Task, error) {
		assert.Equal(t, carrier.ID(), id)
		assert.Equal(t, TaskTypeApplicationProcessing, taskType)
		return rebuilt, nil
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	waitFor(t, func() bool { return rebuilt.executions() == 1 })
	assert.Equal(t, 0, carrier.executions())
}
