package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	httpapi "github.com/aussiebroadwan/surveybasket/internal/auth/http"
	"github.com/aussiebroadwan/surveybasket/internal/auth/jobs"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

const sentryFlushTimeout = 2 * time.Second

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	metrics *obs.Metrics
	queue   jobs.Queue
	sentry  bool

	// Services
	tokenService        *service.TokenService
	accountService      *service.AccountService
	userService         *service.UserService
	rolesService        *service.RolesService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "surveybasket-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: obs.New(),
	}

	app.initSentry()

	if err := app.initDatabase(); err != nil {
		app.flushSentry()
		return nil, err
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		app.flushSentry()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.cfg.MigrateOnly {
		app.logger.Info("migrations applied, exiting")
		return app.db.Close()
	}

	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, drains the job queue and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")
	defer app.flushSentry()

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.queue.Close(); err != nil {
		app.logger.Error("error closing job queue", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initSentry() {
	if app.cfg.SentryDSN == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              app.cfg.SentryDSN,
		Environment:      app.cfg.Env,
		Release:          BuildVersion,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		app.logger.Error("sentry init failed", "error", err)
		return
	}
	app.sentry = true
	app.logger.Info("sentry error reporting enabled")
}

func (app *Application) flushSentry() {
	if app.sentry {
		sentry.Flush(sentryFlushTimeout)
	}
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initQueue() error {
	switch app.cfg.JobsBackend {
	case JobsMQTT:
		q, err := jobs.NewMQTTQueue(jobs.MQTTConfig{
			BrokerURL: app.cfg.MQTT.BrokerURL,
			ClientID:  app.cfg.MQTT.ClientID,
			Username:  app.cfg.MQTT.Username,
			Password:  app.cfg.MQTT.Password,
			Topic:     app.cfg.MQTT.Topic,
		}, app.logger, app.metrics)
		if err != nil {
			return err
		}
		app.queue = q
		app.logger.Info("email jobs published to mqtt", "broker", app.cfg.MQTT.BrokerURL, "topic", app.cfg.MQTT.Topic)
	default:
		app.queue = jobs.NewLocalQueue(jobs.LogMailer{Logger: app.logger}, app.logger, app.metrics, app.cfg.JobsWorkers, 0)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	key, err := LoadSigningKey(app.cfg, app.logger)
	if err != nil {
		return err
	}
	issuer, err := service.NewTokenIssuer(key, app.cfg.Issuer, app.cfg.Audience, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	creds := credential.NewStoreProvider(app.db, cryptox.NewPasswordHasher(pepper))
	creds.MaxFailedAccess = app.cfg.MaxFailedAccess
	creds.LockoutDuration = app.cfg.LockoutDuration
	creds.ActionCodeTTL = app.cfg.ActionCodeTTL

	seed, err := LoadSeed(app.cfg.SeedFile)
	if err != nil {
		return err
	}

	if err := app.initQueue(); err != nil {
		return err
	}

	app.tokenService = &service.TokenService{
		Store:       app.db,
		Credentials: creds,
		Issuer:      issuer,
		Ledger:      service.NewRefreshTokenLedger(app.db),
		Permissions: &service.PermissionResolver{Store: app.db},
		Metrics:     app.metrics,
	}
	app.accountService = &service.AccountService{
		Store:       app.db,
		Credentials: creds,
		Queue:       app.queue,
		Origin:      app.cfg.AppOrigin,
	}
	app.userService = &service.UserService{Store: app.db, Credentials: creds}
	app.rolesService = &service.RolesService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:       app.db,
		Credentials: creds,
		Token:       app.cfg.BootstrapToken,
		Roles:       seed,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	if app.cfg.BootstrapToken == "" {
		app.logger.Info("bootstrap disabled, BOOTSTRAP_TOKEN is not set")
	}
	app.logger.Info("signing with HS256", "issuer", app.cfg.Issuer, "audience", app.cfg.Audience)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokenService.Issuer.Verifier(),
		app.metrics,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
