package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	taskStore    store.TaskStore
	tagStore     store.TagStore
	projectStore store.ProjectStore

	// Service interfaces
	jwtService     auth.JWTService
	taskService    service.TaskService
	userService    service.UserService
	projectService service.ProjectService
	tagService     service.TagService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.tagStore = postgres.NewPostgresTagStore(db, logger)
	app.projectStore = postgres.NewPostgresProjectStore(db, logger)

	// Create repository adapters for the task service
	taskRepoAdapter := service.NewTaskRepositoryAdapter(app.taskStore, db)
	userRefAdapter := service.NewUserReferenceAdapter(app.userStore)
	tagRefAdapter := service.NewTagReferenceAdapter(app.tagStore)

	// Initialize task service
	app.taskService, err = service.NewTaskService(
		taskRepoAdapter,
		userRefAdapter,
		tagRefAdapter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Initialize user service with password hashing
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	verifier := auth.NewBcryptVerifier()
	app.userService = service.NewUserService(app.userStore, hasher, verifier, db, logger)

	// Initialize project and tag services
	app.projectService = service.NewProjectService(app.projectStore, db, logger)
	app.tagService = service.NewTagService(app.tagStore, db, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
