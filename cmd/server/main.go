package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	h "github.com/gorilla/handlers"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/handlers"
	"github.com/stanstork/crewdispatch/internal/middleware"
	"github.com/stanstork/crewdispatch/internal/migration"
	"github.com/stanstork/crewdispatch/internal/notification"
	"github.com/stanstork/crewdispatch/internal/repository"
	"github.com/stanstork/crewdispatch/internal/routes"
	"github.com/stanstork/crewdispatch/internal/scheduler"
	"github.com/stanstork/crewdispatch/internal/temporal"
	"github.com/stanstork/crewdispatch/internal/temporal/activities"
	"github.com/stanstork/crewdispatch/internal/temporal/workflows"
	dispatchworker "github.com/stanstork/crewdispatch/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	tc "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

type application struct {
	config         *config.Config
	db             *sql.DB
	temporalClient tc.Client
	logger         zerolog.Logger
	notifications  notification.Service
	engine         *scheduler.Engine
	dispatcher     temporal.Dispatcher
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	goose.SetLogger(migration.NewGooseAdapter(logger))

	// Load configuration.
	cfg := config.Load()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	if err := migration.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
	}

	app.notifications = app.initNotifications()

	store := repository.NewDispatchStore(db, cfg.Assignment.SerializeSlots)
	app.engine = scheduler.NewEngine(store, scheduler.PolicyFromConfig(cfg.Assignment), app.notifications, logger)

	// Temporal is optional; without it job intake falls back to the sweeper
	// and the synchronous run endpoints.
	var temporalWorker worker.Worker
	if cfg.Temporal.Enabled {
		temporalClient, err := tc.Dial(tc.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporal.NewTemporalAdapter(logger),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Unable to create Temporal client")
		}
		defer temporalClient.Close()

		app.temporalClient = temporalClient
		app.dispatcher = temporal.NewDispatcher(temporalClient, cfg.Temporal, cfg.Assignment.BatchLimit, logger)
		temporalWorker = app.startTemporalWorker(logger)
	} else {
		app.dispatcher = temporal.NewNopDispatcher(logger)
	}

	// Start the periodic sweeper when enabled.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	if cfg.Worker.Enabled {
		sweeper := dispatchworker.NewSweeper(dispatchworker.SweeperConfig{
			Interval:   cfg.Worker.SweepInterval,
			BatchLimit: cfg.Assignment.BatchLimit,
		}, app.engine, logger)
		go sweeper.Start(sweepCtx)
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, temporalWorker, stopSweeper, logger)

	logger.Info().Msg("Application terminated.")
}

// initNotifications builds the notification service and its enabled channels.
func (app *application) initNotifications() notification.Service {
	var notifiers []notification.Notifier

	if app.config.Email.Enabled {
		emailNotifier, err := notification.NewEmailNotifier(app.config.Email, app.logger)
		if err != nil {
			app.logger.Fatal().Err(err).Msg("failed to configure email notifier")
		}
		notifiers = append(notifiers, emailNotifier)
	}

	if app.config.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     app.config.Redis.Addr,
			Password: app.config.Redis.Password,
			DB:       app.config.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			app.logger.Warn().Err(err).Str("addr", app.config.Redis.Addr).Msg("redis not reachable, stream events may be dropped")
		}
		notifiers = append(notifiers, notification.NewStreamNotifier(redisClient, app.config.Redis, app.logger))
	}

	return notification.NewService(repository.NewNotificationRepository(app.db), app.logger, notifiers...)
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	limit := app.config.Assignment.BatchLimit

	// Repositories
	jobRepo := repository.NewJobRepository(app.db)
	scheduleRepo := repository.NewScheduleRepository(app.db)
	assignmentRepo := repository.NewAssignmentRepository(app.db)

	return routes.NewRouter(routes.Handlers{
		Locations:      handlers.NewLocationHandler(repository.NewLocationRepository(app.db), logger),
		Installers:     handlers.NewInstallerHandler(repository.NewInstallerRepository(app.db), logger),
		Jobs:           handlers.NewJobHandler(jobRepo, scheduleRepo, app.dispatcher, logger),
		PurchaseOrders: handlers.NewPurchaseOrderHandler(repository.NewPurchaseOrderRepository(app.db), logger),
		Schedules:      handlers.NewScheduleHandler(jobRepo, scheduleRepo, app.engine, limit, logger),
		Assignments:    handlers.NewAssignmentHandler(jobRepo, assignmentRepo, app.engine, app.dispatcher, limit, logger),
		Notifications:  handlers.NewNotificationHandler(app.notifications, logger),
		Stats:          handlers.NewStatsHandler(repository.NewStatsRepository(app.db), logger),
	})
}

func (app *application) startTemporalWorker(logger zerolog.Logger) worker.Worker {
	taskQueue := app.config.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = temporal.DefaultTaskQueue
	}

	w := worker.New(app.temporalClient, taskQueue, worker.Options{})
	workflows.Register(w, &activities.Activities{Engine: app.engine})

	// Start the worker in a goroutine so it doesn't block.
	go func() {
		logger.Info().Str("task_queue", taskQueue).Msg("Starting Temporal worker...")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("Unable to start worker")
		}
	}()

	return w
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, temporalWorker worker.Worker, stopSweeper context.CancelFunc, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	stopSweeper()

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	if temporalWorker == nil {
		return
	}
	logger.Info().Msg("Stopping Temporal worker...")
	temporalWorker.Stop()
	logger.Info().Msg("Temporal worker stopped.")
}
