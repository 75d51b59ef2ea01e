package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/notification"
	"github.com/phrazzld/tasker-api/internal/platform/amqp"
	"github.com/phrazzld/tasker-api/internal/platform/mail"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/worker"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	storage *storage

	jwtService  auth.JWTService
	hasher      auth.PasswordHasher
	userService service.UserService
	taskService service.TaskService

	// Notification pipeline
	eventEmitter *events.InMemoryEventEmitter
	notifLog     *notification.MemoryLog
	notifier     *notification.Notifier
	scheduler    *notification.Scheduler
	pool         *worker.Pool
	publisher    *amqp.Publisher

	schedulerCancel context.CancelFunc
	schedulerDone   sync.WaitGroup
}

// newApplication creates a new application instance with all dependencies initialized.
// The store backend must already be open.
func newApplication(cfg *config.Config, logger *slog.Logger, st *storage) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		storage: st,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.pool = worker.NewPool(worker.PoolConfig{
		Workers:    cfg.Notification.DispatchWorkers,
		QueueSize:  cfg.Notification.DispatchQueueSize,
		JobTimeout: time.Duration(cfg.Notification.DispatchTimeoutSeconds) * time.Second,
	}, logger)

	dispatchers, err := app.setupDispatchers()
	if err != nil {
		return nil, err
	}

	app.notifLog = notification.NewMemoryLog()
	app.notifier = notification.NewNotifier(app.notifLog, app.pool, logger, dispatchers...)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(app.notifier)

	app.userService = service.NewUserService(st.users, app.hasher, logger)
	app.taskService = service.NewTaskService(st.tasks, app.eventEmitter, logger)

	app.scheduler = notification.NewScheduler(
		st.tasks,
		app.notifier,
		app.notifLog,
		notification.SchedulerConfigFrom(cfg.Notification),
		logger,
	)

	logger.Info("application initialized successfully",
		"store", cfg.Database.Driver,
		"dispatchers", len(dispatchers))
	return app, nil
}

// setupDispatchers builds the delivery channels: email always (SMTP when a
// host is configured, otherwise logged), plus AMQP when a broker URL is set.
func (app *application) setupDispatchers() ([]notification.Dispatcher, error) {
	var sender mail.Sender
	if app.config.Mail.SMTPHost != "" {
		sender = mail.NewSMTPSender(app.config.Mail, app.logger)
	} else {
		app.logger.Warn("no SMTP host configured; notification emails will only be logged")
		sender = mail.NewLogSender(app.logger)
	}

	dispatchers := []notification.Dispatcher{
		notification.NewMailDispatcher(sender, app.storage.users, app.config.Mail.FallbackRecipient, app.logger),
	}

	if app.config.Broker.URL != "" {
		publisher, err := amqp.Dial(app.config.Broker, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		app.publisher = publisher
		dispatchers = append(dispatchers, publisher)
	}
	return dispatchers, nil
}

// startBackground starts the dispatch pool and the deadline scheduler.
func (app *application) startBackground(ctx context.Context) {
	app.pool.Start()

	schedCtx, cancel := context.WithCancel(ctx)
	app.schedulerCancel = cancel
	app.schedulerDone.Add(1)
	go func() {
		defer app.schedulerDone.Done()
		app.scheduler.Run(schedCtx)
	}()
}

// Run starts the background workers and the HTTP server, and blocks until
// the server shuts down.
func (app *application) Run(ctx context.Context) error {
	app.startBackground(ctx)

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. The scheduler
// stops first so no new deliveries are queued while the pool drains.
func (app *application) cleanup(ctx context.Context) {
	if app.schedulerCancel != nil {
		app.schedulerCancel()
		app.schedulerDone.Wait()
	}

	if app.pool != nil {
		if err := app.pool.Stop(ctx); err != nil {
			app.logger.Error("worker pool did not drain before shutdown", "error", err)
		}
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing broker connection", "error", err)
		}
	}

	if err := app.storage.Close(); err != nil {
		app.logger.Error("error closing database connection", "error", err)
	}

	app.logger.Info("application shutdown completed")
}
