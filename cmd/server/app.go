package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwell/matrix-api/internal/classify"
	"github.com/taskwell/matrix-api/internal/config"
	"github.com/taskwell/matrix-api/internal/events"
	"github.com/taskwell/matrix-api/internal/platform/gemini"
	"github.com/taskwell/matrix-api/internal/platform/postgres"
	"github.com/taskwell/matrix-api/internal/realtime"
	"github.com/taskwell/matrix-api/internal/service"
	"github.com/taskwell/matrix-api/internal/service/auth"
	"github.com/taskwell/matrix-api/internal/task"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db         *sql.DB
	hub        *realtime.Hub
	queue      *task.Queue
	workerPool *task.WorkerPool

	taskService service.TaskService
	jwtService  auth.JWTService
}

// newApplication builds the full dependency graph: store, classifier,
// realtime hub, background pipeline, and the services the router needs.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	taskStore := postgres.NewTaskStore(db, logger)
	hub := realtime.NewHub(logger)

	analyzer, err := gemini.NewAnalyzer(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	classifier := classify.NewAdapter(analyzer, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, logger)

	// Background reclassification: emitter -> event handler -> queue ->
	// worker pool. Jobs are fire-and-forget; failures leave the task at its
	// current ratings.
	emitter := events.NewInMemoryEmitter(logger)
	queue := task.NewQueue(cfg.Task.QueueSize, logger)
	factory := task.NewReclassifyJobFactory(classifier, taskStore, hub, logger)
	emitter.RegisterHandler(task.NewEventHandler(factory, queue, logger))

	workerPool := task.NewWorkerPool(queue, task.WorkerPoolConfig{
		WorkerCount: cfg.Task.WorkerCount,
	}, logger)

	taskService, err := service.NewTaskService(taskStore, hub, emitter, classifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		hub:         hub,
		queue:       queue,
		workerPool:  workerPool,
		taskService: taskService,
		jwtService:  jwtService,
	}, nil
}

// run starts the background workers and the HTTP server, blocking until
// shutdown completes.
func (app *application) run(ctx context.Context) error {
	app.workerPool.Start()
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources in dependency order: stop accepting jobs,
// drain the workers, then close the database.
func (app *application) cleanup() {
	app.queue.Close()
	app.workerPool.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}
