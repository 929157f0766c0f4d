package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/applyflow/applyflow-api/internal/events"
	"github.com/google/uuid"
)

// TaskFactoryEventHandler implements the events.EventHandler interface
// to handle task creation events and delegate them to the task factory.
// It is the only bridge between the submission path and the worker pool:
// the application service emits an event, this handler turns it into a
// persisted, queued task.
type TaskFactoryEventHandler struct {
	taskFactory interface {
		CreateTask(applicationID uuid.UUID) (Task, error)
	}
	taskRunner interface {
		Submit(ctx context.Context, task Task) error
	}
	logger *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the
// given task factory to create tasks and submits them to the provided
// task runner.
func NewTaskFactoryEventHandler(
	taskFactory interface {
		CreateTask(applicationID uuid.UUID) (Task, error)
	},
	taskRunner interface {
		Submit(ctx context.Context, task Task) error
	},
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
// Events with other types are ignored so additional handlers can coexist
// on the same emitter.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeApplicationProcessing {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.ApplicationProcessingPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	applicationID := payload.ApplicationID
	if applicationID == uuid.Nil {
		h.logger.Error("event carries no application ID", "event_id", event.ID)
		return fmt.Errorf("event %s carries no application ID", event.ID)
	}

	h.logger.Debug("creating task for application",
		"application_id", applicationID,
		"event_id", event.ID)
	t, err := h.taskFactory.CreateTask(applicationID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"application_id", applicationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"application_id", applicationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", t.ID(),
		"application_id", applicationID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
