package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/taskboard-api/internal/api"
	apimiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/automation"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// application holds the fully wired server components. It is assembled once
// at startup by initializeApp and owns their lifecycles.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	router  http.Handler
	scanner *automation.Scanner
}

// initializeApp loads configuration and builds the dependency graph:
// database, stores, event emitter, automation engine, due-date scanner,
// services, handlers and router.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg.Database, appLogger)
	if err != nil {
		return nil, err
	}

	if err := postgres.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	ruleStore := postgres.NewPostgresRuleStore(db, appLogger)
	taskStore := postgres.NewPostgresTaskStore(db, appLogger)
	projectStore := postgres.NewPostgresProjectStore(db, appLogger)

	emitter := events.NewInMemoryEmitter(appLogger)

	executor := automation.NewExecutor(
		service.NewTaskMutatorAdapter(taskStore),
		service.NewLogNotifier(appLogger),
		service.NewLogBadgeAwarder(appLogger),
		cfg.Automation.ActionTimeout,
		appLogger,
	)
	engine := automation.NewEngine(
		ruleStore,
		taskStore,
		executor,
		automation.EngineConfig{MaxCascadeDepth: cfg.Automation.MaxCascadeDepth},
		appLogger,
	)
	emitter.RegisterHandler(engine)

	scanner := automation.NewScanner(
		taskStore,
		emitter,
		automation.ScannerConfig{Interval: cfg.Automation.DueDateScanInterval},
		appLogger,
	)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	ruleService, err := service.NewRuleService(ruleStore, projectStore, appLogger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create rule service: %w", err)
	}
	taskService, err := service.NewTaskService(taskStore, emitter, appLogger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	router := setupRouter(routerDeps{
		authMiddleware: apimiddleware.NewAuthMiddleware(jwtService),
		ruleHandler:    api.NewRuleHandler(ruleService, appLogger),
		taskHandler:    api.NewTaskHandler(taskService, appLogger),
	})

	return &application{
		config:  cfg,
		logger:  appLogger,
		db:      db,
		router:  router,
		scanner: scanner,
	}, nil
}

// Run starts the due-date scanner and the HTTP server, then blocks until a
// termination signal arrives and the server has drained.
func (a *application) Run() error {
	defer a.db.Close()

	scanCtx, stopScanner := context.WithCancel(context.Background())
	defer stopScanner()
	go a.scanner.Run(scanCtx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		a.logger.Info("shutdown signal received", "signal", sig.String())

		stopScanner()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	a.logger.Info("server stopped")
	return nil
}
