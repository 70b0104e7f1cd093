package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/mrcrpro/panaguas/eventstore/oteladapters"
	"github.com/mrcrpro/panaguas/eventstore/postgresengine"
	"github.com/mrcrpro/panaguas/internal/config"
	"github.com/mrcrpro/panaguas/internal/handler"
	"github.com/mrcrpro/panaguas/internal/metrics"
	"github.com/mrcrpro/panaguas/internal/middleware"
	"github.com/mrcrpro/panaguas/internal/notification"
	"github.com/mrcrpro/panaguas/internal/overdue"
	"github.com/mrcrpro/panaguas/internal/seed"
	"github.com/mrcrpro/panaguas/internal/stationcache"
	"github.com/mrcrpro/panaguas/lending/coordinator"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
	shellconfig "github.com/mrcrpro/panaguas/lending/shared/shell/config"
)

const (
	// ServiceName names the process in logs, metrics and traces.
	ServiceName = "panaguas"

	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second

	rateLimiterCleanup = time.Minute

	logMsgStarting      = "starting"
	logMsgListening     = "http server listening"
	logMsgShuttingDown  = "shutting down"
	logMsgStopped       = "stopped"
	logMsgSeedApplied   = "seed applied"
	logMsgCloseFailed   = "closing resource failed"
	logAttrAddr         = "addr"
	logAttrDriver       = "eventstore_driver"
	logAttrVersion      = "version"
	logAttrResource     = "resource"
	logAttrStations     = "stations_registered"
	logAttrUsers        = "users_registered"
	logAttrUnchanged    = "unchanged"
	logAttrTracing      = "tracing"
	logAttrStationCache = "station_cache"
	logAttrSink         = "notification_sink"
)

// ErrMigrationsNeedPostgres is returned by Migrate for the memory driver.
var ErrMigrationsNeedPostgres = errors.New("migrations need a postgres event store driver")

type namedCloser struct {
	name  string
	close func() error
}

// App is the assembled process. Build it with New, then call Run or Seed.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string

	handlers    lendingHandlers
	router      http.Handler
	server      *http.Server
	dispatcher  *notification.Dispatcher
	scheduler   *overdue.Scheduler
	rateLimiter *middleware.RateLimiter
	closers     []namedCloser
}

// Option configures an App.
type Option func(*App)

// WithVersion sets the version reported in logs and traces.
func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

// New opens all infrastructure and wires the handlers. Nothing runs until Run is called,
// but connections are open, so Close must be called if Run is not.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: logger, version: "dev"}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.build(ctx); err != nil {
		return nil, errors.Join(err, a.Close())
	}

	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg

	obs := observability{logger: a.logger, plainLogger: a.logger}

	if cfg.TracingEnabled() {
		provider, err := shellconfig.NewTracingProvider(ctx, ServiceName, a.version, cfg.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}

		a.addCloser("tracing", provider.Shutdown)
		obs.tracing = oteladapters.NewTracingCollector(provider.TracerProvider.Tracer(ServiceName))
		obs.logger = oteladapters.NewSlogBridgeLoggerWithFallback(ServiceName, a.logger.Handler())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry, ServiceName)
	obs.metrics = collector

	opened, err := openEventStore(ctx, cfg, a.logger, collector, obs.tracing)
	if err != nil {
		return fmt.Errorf("opening event store: %w", err)
	}
	a.addCloser("event store", opened.close)

	a.handlers, err = buildHandlers(opened.store, obs, retryOptions(cfg))
	if err != nil {
		return err
	}

	cache, cacheKind, err := a.openStationCache()
	if err != nil {
		return err
	}
	listing := stationcache.NewCachedListing(a.handlers.stationListing, cache, obs.logger)

	sink, sinkKind := a.notificationSink(obs.logger)
	a.dispatcher, err = notification.NewDispatcher(sink,
		notification.WithQueueSize(cfg.NotificationQueueSize),
		notification.WithWorkers(cfg.NotificationWorkers),
		notification.WithLogger(a.logger),
		notification.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	lending, err := coordinator.NewCoordinator(
		coordinator.Handlers{
			UserByStudentCode: a.handlers.userByStudentCode,
			OpenLoanForUser:   a.handlers.openLoanForUser,
			LoansByUser:       a.handlers.loansByUser,
			RequestLoan:       a.handlers.requestLoan,
			ReturnLoan:        a.handlers.returnLoan,
		},
		coordinator.WithNotifier(a.dispatcher),
		coordinator.WithStationCache(listing),
		coordinator.WithLogger(obs.logger),
	)
	if err != nil {
		return err
	}

	job, err := overdue.NewJob(a.handlers.dueSoonLoans, a.handlers.userProfile, a.dispatcher, cache,
		overdue.WithLogger(obs.logger),
		overdue.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	a.scheduler, err = overdue.NewScheduler(job, cfg.OverdueCronSpec, obs.logger)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", cfg.OverdueCronSpec, err)
	}

	if err = a.buildRouter(lending, listing, registry, opened.health); err != nil {
		return err
	}

	a.logger.Info(logMsgStarting,
		logAttrVersion, a.version,
		logAttrDriver, string(cfg.EventStoreDriver),
		logAttrTracing, cfg.TracingEnabled(),
		logAttrStationCache, cacheKind,
		logAttrSink, sinkKind,
	)

	return nil
}

func (a *App) buildRouter(
	lending handler.Lending,
	listing *stationcache.CachedListing,
	registry *prometheus.Registry,
	health func(ctx context.Context) error,
) error {

	verifier, err := middleware.NewDeviceKeyVerifier(a.cfg.DeviceAPIKey, a.cfg.DeviceAPIKeyBcrypt)
	if err != nil {
		return err
	}

	a.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            rate.Limit(a.cfg.RateLimitRPS),
		Burst:           a.cfg.RateLimitBurst,
		CleanupInterval: rateLimiterCleanup,
	}, a.logger)
	a.addCloser("rate limiter", func() error {
		a.rateLimiter.Stop()
		return nil
	})

	h := handler.New(handler.Dependencies{
		Lending:  lending,
		Stations: listing,
		Admin: handler.AdminHandlers{
			RegisterStation:     a.handlers.registerStation,
			ChangeStationStatus: a.handlers.changeStationStatus,
			AdjustStationStock:  a.handlers.adjustStationStock,
			RegisterUser:        a.handlers.registerUser,
			ChangeDonationTier:  a.handlers.changeDonationTier,
			PayFine:             a.handlers.payFine,
			LoansByUser:         a.handlers.loansByUser,
		},
		StationCache: listing,
		Notifier:     a.dispatcher,
		Logger:       a.logger,
	})

	a.router = h.Router(
		handler.Middlewares{
			Recovery:   middleware.NewRecoveryMiddleware(a.logger),
			Logging:    middleware.NewLoggingMiddleware(a.logger),
			DeviceAuth: middleware.NewDeviceAuthMiddleware(verifier, a.logger),
			RateLimit:  a.rateLimiter.Middleware(),
			AdminAuth:  middleware.NewAdminAuthMiddleware([]byte(a.cfg.AdminJWTSecret), a.logger),
		},
		handler.Operations{
			Metrics: metrics.Handler(registry),
			Health:  health,
		},
	)

	a.server = &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return nil
}

func (a *App) openStationCache() (stationcache.Cache, string, error) {
	if a.cfg.RedisURL == "" {
		return stationcache.NewMemoryCache(a.cfg.StationCacheTTL), "memory", nil
	}

	cache, err := stationcache.NewRedisCacheFromURL(a.cfg.RedisURL, a.cfg.StationCacheTTL)
	if err != nil {
		return nil, "", fmt.Errorf("connecting to redis: %w", err)
	}
	a.addCloser("redis", cache.Close)

	return cache, "redis", nil
}

func (a *App) notificationSink(logger shell.ContextualLogger) (notification.Sink, string) {
	if !a.cfg.EmailEnabled() {
		return notification.NewLogSink(logger), "log"
	}

	return notification.NewEmailSink(notification.SMTPSettings{
		Host:     a.cfg.SMTPHost,
		Port:     strconv.Itoa(a.cfg.SMTPPort),
		Username: a.cfg.SMTPUsername,
		Password: a.cfg.SMTPPassword,
		From:     a.cfg.SMTPFrom,
	}, notification.WithLocation(a.cfg.CampusLocation)), "smtp"
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.router
}

// Seed applies SEED_FILE if one is configured.
func (a *App) Seed(ctx context.Context) (seed.Result, error) {
	if a.cfg.SeedFile == "" {
		return seed.Result{}, nil
	}

	file, err := seed.LoadFile(a.cfg.SeedFile)
	if err != nil {
		return seed.Result{}, err
	}

	result, err := seed.Apply(ctx, file, seed.Handlers{
		RegisterStation: a.handlers.registerStation,
		RegisterUser:    a.handlers.registerUser,
	}, time.Now())
	if err != nil {
		return result, err
	}

	a.logger.InfoContext(ctx, logMsgSeedApplied,
		logAttrStations, result.StationsRegistered,
		logAttrUsers, result.UsersRegistered,
		logAttrUnchanged, result.Unchanged,
	)

	return result, nil
}

// Run seeds, starts the dispatcher, the overdue scheduler and the HTTP server, and blocks
// until ctx is done or the server fails. It shuts down gracefully and closes the App.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Seed(ctx); err != nil {
		return errors.Join(fmt.Errorf("seeding: %w", err), a.Close())
	}

	if err := a.dispatcher.Start(); err != nil {
		return errors.Join(err, a.Close())
	}

	if err := a.scheduler.Start(); err != nil {
		return errors.Join(err, a.shutdown(), a.Close())
	}

	listener, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return errors.Join(err, a.shutdown(), a.Close())
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info(logMsgListening, logAttrAddr, listener.Addr().String())
		serveErr <- a.server.Serve(listener)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	a.logger.Info(logMsgShuttingDown)
	err = errors.Join(runErr, a.shutdown(), a.Close())
	a.logger.Info(logMsgStopped)

	return err
}

// shutdown stops accepting requests first, so notifications of in-flight requests are still queued.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	if err := a.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("overdue scheduler: %w", err))
	}

	if err := a.dispatcher.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("notification dispatcher: %w", err))
	}

	return errors.Join(errs...)
}

// Close releases connections in reverse order of opening. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error(logMsgCloseFailed, logAttrResource, c.name, shell.LogAttrError, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}

func (a *App) addCloser(name string, closeFn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: closeFn})
}

// Migrate applies the event store migrations.
func Migrate(cfg *config.Config) error {
	if !cfg.UsesPostgres() {
		return ErrMigrationsNeedPostgres
	}

	return postgresengine.RunMigrations(cfg.DatabaseURL)
}

func retryOptions(cfg *config.Config) []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(cfg.RetryMaxAttempts),
		shell.WithBaseDelay(cfg.RetryBaseDelay),
	}
}
