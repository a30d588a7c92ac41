package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/config"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/events"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/notify"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/postgres"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/scheduler"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service/auth"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	taskStore         store.TaskStore
	historyStore      store.HistoryStore
	notificationStore store.NotificationStore

	// Auth
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Services
	activityService     *service.ActivityService
	taskService         *service.TaskService
	notificationService *service.NotificationService
	reminderService     *scheduler.ReminderService

	// Event system: the activity service publishes history_recorded
	// events here; the fan-out handler subscribes and writes notifications.
	eventEmitter *events.InMemoryEventEmitter

	// Background reminder sweeps; nil when disabled by configuration.
	reminderRunner *scheduler.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application wiring.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.historyStore = postgres.NewPostgresHistoryStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)

	// Event system and notification fan-out. The fan-out handler is
	// registered before any service can emit, so no event is dropped
	// during startup.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	fanoutHandler, err := notify.NewFanoutHandler(
		db,
		app.historyStore,
		app.taskStore,
		app.userStore,
		app.notificationStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification fan-out handler: %w", err)
	}
	app.eventEmitter.RegisterHandler(fanoutHandler)

	// Services
	app.activityService, err = service.NewActivityService(app.historyStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		db,
		app.taskStore,
		app.historyStore,
		app.userStore,
		app.activityService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.notificationService, err = service.NewNotificationService(app.notificationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	app.reminderService, err = scheduler.NewReminderService(app.taskStore, app.notificationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder service: %w", err)
	}

	if cfg.Reminder.Enabled {
		app.reminderRunner = scheduler.NewRunner(app.reminderService, scheduler.RunnerConfig{
			Interval: time.Duration(cfg.Reminder.IntervalMinutes) * time.Minute,
		}, logger)
	}

	return app, nil
}

// cleanup releases application resources in reverse dependency order:
// the reminder runner first (so no sweep writes race the closing pool),
// then the database connection.
func (app *application) cleanup() {
	if app.reminderRunner != nil {
		app.reminderRunner.Stop()
		app.logger.Info("reminder runner stopped")
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	} else {
		app.logger.Info("database connection closed")
	}
}
