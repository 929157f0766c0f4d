package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/applyflow/applyflow-api/internal/api"
	"github.com/applyflow/applyflow-api/internal/api/middleware"
	"github.com/applyflow/applyflow-api/internal/config"
	"github.com/applyflow/applyflow-api/internal/events"
	"github.com/applyflow/applyflow-api/internal/platform/agent"
	"github.com/applyflow/applyflow-api/internal/platform/postgres"
	"github.com/applyflow/applyflow-api/internal/platform/storage"
	"github.com/applyflow/applyflow-api/internal/service"
	"github.com/applyflow/applyflow-api/internal/service/auth"
	"github.com/applyflow/applyflow-api/internal/task"
)

// application owns every long-lived component of the server and their
// shutdown order.
type application struct {
	cfg    *config.Config
	logger *slog.Logger

	db          *sql.DB
	gcsStore    *storage.GCSStore
	sessionPool *agent.SessionPool
	taskRunner  *task.TaskRunner
	server      *httpServer
}

// documentResolver adapts the GCS store to the worker's resolver contract.
type documentResolver struct {
	gcs *storage.GCSStore
}

func (r *documentResolver) Resolve(ctx context.Context, ref string) (task.ResolvedDocument, error) {
	doc, err := r.gcs.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// newApplication wires the full dependency graph: database and stores,
// document storage, the browser agent, the task pipeline, services, and
// the HTTP surface.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Stores
	userStore := postgres.NewPostgresUserStore(db, log, bcrypt.DefaultCost)
	profileStore := postgres.NewPostgresProfileStore(db, log)
	applicationStore := postgres.NewPostgresApplicationStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db)

	// Document storage
	gcsStore, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, cfg.Storage.ResumeFolder, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}

	// Browser agent
	sessionPool, err := agent.NewSessionPool(agent.SessionPoolConfig{
		MaxSessions: cfg.Task.WorkerCount,
		Headless:    cfg.LLM.Headless,
	}, log)
	if err != nil {
		_ = gcsStore.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize browser session pool: %w", err)
	}

	planner, err := agent.NewPlanner(ctx, agent.PlannerConfig{
		APIKey:     cfg.LLM.GeminiAPIKey,
		ModelName:  cfg.LLM.ModelName,
		MaxRetries: cfg.LLM.MaxRetries,
		RetryDelay: time.Duration(cfg.LLM.RetryDelaySeconds) * time.Second,
	}, log)
	if err != nil {
		_ = sessionPool.Close()
		_ = gcsStore.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize planner: %w", err)
	}

	filler := agent.NewBrowserFormFiller(sessionPool, planner, log)

	// Services
	userService, err := service.NewUserService(userStore, profileStore, db, log)
	if err != nil {
		return nil, err
	}

	profileService, err := service.NewProfileService(profileStore, userStore, gcsStore, log)
	if err != nil {
		return nil, err
	}

	eventEmitter := events.NewInMemoryEventEmitter(log)

	applicationService, err := service.NewApplicationService(applicationStore, db, eventEmitter, log)
	if err != nil {
		return nil, err
	}

	// Task pipeline
	taskRunner := task.NewTaskRunner(taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, log)

	taskAdapter := service.NewApplicationTaskAdapter(applicationStore, log)
	executorTimeout := time.Duration(cfg.Task.ExecutorTimeoutSeconds) * time.Second
	taskFactory := task.NewApplicationProcessingTaskFactory(
		taskAdapter,
		profileService,
		&documentResolver{gcs: gcsStore},
		filler,
		executorTimeout,
		log,
	)

	taskRunner.SetRehydrator(func(id uuid.UUID, taskType string, payload []byte) (task.Task, error) {
		if taskType != task.TaskTypeApplicationProcessing {
			return nil, fmt.Errorf("no rehydrator for task type %q", taskType)
		}
		return taskFactory.Rehydrate(id, payload)
	})

	eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, taskRunner, log))

	// Auth
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// HTTP surface
	authHandler := api.NewAuthHandler(userService, jwtService, auth.NewBcryptVerifier())
	profileHandler := api.NewProfileHandler(profileService)
	applicationHandler := api.NewApplicationHandler(applicationService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := newRouter(authHandler, profileHandler, applicationHandler, authMiddleware)
	server := newHTTPServer(cfg.Server.Port, router, log)

	return &application{
		cfg:         cfg,
		logger:      log,
		db:          db,
		gcsStore:    gcsStore,
		sessionPool: sessionPool,
		taskRunner:  taskRunner,
		server:      server,
	}, nil
}

// Start launches the task runner (which also recovers interrupted tasks)
// and the HTTP server.
func (a *application) Start(ctx context.Context) error {
	if err := a.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	a.server.Start()
	return nil
}

// Shutdown stops the components in reverse dependency order: stop taking
// requests, drain workers, then release the browser and storage handles.
func (a *application) Shutdown() error {
	var firstErr error

	if err := a.server.Shutdown(); err != nil {
		firstErr = err
	}

	a.taskRunner.Stop()

	if err := a.sessionPool.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := a.gcsStore.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	a.logger.Info("shutdown complete")
	return firstErr
}

// Close releases resources without the graceful drain; used on failed
// startup paths.
func (a *application) Close() {
	_ = a.db.Close()
}
