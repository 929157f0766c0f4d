package task

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ApplicationProcessingTaskFactory creates ApplicationProcessingTask
// instances with a fixed set of dependencies.
type ApplicationProcessingTaskFactory struct {
	apps            ApplicationService
	snapshots       SnapshotProvider
	resolver        DocumentResolver
	filler          FormFiller
	executorTimeout time.Duration
	logger          *slog.Logger
}

// NewApplicationProcessingTaskFactory creates a new factory for
// ApplicationProcessingTasks.
func NewApplicationProcessingTaskFactory(
	apps ApplicationService,
	snapshots SnapshotProvider,
	resolver DocumentResolver,
	filler FormFiller,
	executorTimeout time.Duration,
	logger *slog.Logger,
) *ApplicationProcessingTaskFactory {
	return &ApplicationProcessingTaskFactory{
		apps:            apps,
		snapshots:       snapshots,
		resolver:        resolver,
		filler:          filler,
		executorTimeout: executorTimeout,
		logger:          logger.With("component", "application_processing_task_factory"),
	}
}

// CreateTask creates a new ApplicationProcessingTask for the specified
// application.
func (f *ApplicationProcessingTaskFactory) CreateTask(applicationID uuid.UUID) (Task, error) {
	return NewApplicationProcessingTask(
		applicationID,
		f.apps,
		f.snapshots,
		f.resolver,
		f.filler,
		f.executorTimeout,
		f.logger,
	)
}

// Rehydrate rebuilds an executable task from its persisted ID and payload.
// It satisfies the TaskRehydrator contract for application processing
// tasks; unknown task types are rejected by the caller.
func (f *ApplicationProcessingTaskFactory) Rehydrate(taskID uuid.UUID, payload []byte) (Task, error) {
	return RehydrateApplicationProcessingTask(
		taskID,
		payload,
		f.apps,
		f.snapshots,
		f.resolver,
		f.filler,
		f.executorTimeout,
		f.logger,
	)
}
