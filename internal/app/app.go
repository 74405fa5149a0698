package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"GrantReport/internal/config"
	"GrantReport/internal/httpapi"
	"GrantReport/internal/infrastructure/cache"
	"GrantReport/internal/infrastructure/metrics"
	"GrantReport/internal/infrastructure/scheduler"
	"GrantReport/internal/infrastructure/storage"
	"GrantReport/internal/infrastructure/upstream"
	"GrantReport/internal/logging"
	"GrantReport/internal/ports"
	"GrantReport/internal/report"
	"GrantReport/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	cache    *cache.RedisReportCache
	registry *prometheus.Registry
	ingestor *usecase.Ingestor
	reports  *usecase.ReportService
}

// New connects to Postgres (and Redis when configured) and builds the use cases.
// A nil clock reads system time.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, clock report.Clock) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	opts, err := cfg.Report.Options()
	if err != nil {
		return nil, fmt.Errorf("report options: %w", err)
	}

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	repo := storage.NewPostgresRepository(db, baseLogger.With("component", "storage"))
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger, db: db}

	var reportCache ports.ReportCache
	if cfg.Redis.Address != "" {
		a.cache = cache.NewRedisReportCache(cache.NewRedisClient(cfg.Redis), cfg.Redis.TTL(), baseLogger.With("component", "cache"))
		if err := a.cache.Ping(ctx); err != nil {
			baseLogger.Warn("report cache unavailable, continuing without it", "error", err)
			_ = a.cache.Close()
			a.cache = nil
		} else {
			reportCache = a.cache
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	source := upstream.NewClient(cfg.Upstream, nil, baseLogger.With("component", "upstream"))

	a.ingestor = usecase.NewIngestor(usecase.IngestDeps{
		Source:     source,
		Repository: repo,
		Cache:      reportCache,
		Metrics:    m,
		Logger:     baseLogger.With("component", "ingest"),
	})

	a.reports = usecase.NewReportService(usecase.ReportDeps{
		Repository: repo,
		Ingestor:   a.ingestor,
		Builder:    report.NewBuilder(clock, opts, baseLogger.With("component", "report")),
		Cache:      reportCache,
		Metrics:    m,
		Logger:     baseLogger.With("component", "report"),
	})

	return a, nil
}

// Load runs a single ingestion.
func (a *Application) Load(ctx context.Context) (int, error) {
	return a.ingestor.Run(ctx)
}

// Report builds the report JSON once.
func (a *Application) Report(ctx context.Context) ([]byte, error) {
	return a.reports.Generate(ctx)
}

// Serve runs the HTTP API and the optional refresh scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(a.ingestor, a.reports, a.logger.With("component", "http"))
	router := httpapi.NewRouter(handler, a.registry, a.logger.With("component", "http"))

	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	refresh := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval()),
		a.ingestor,
		a.logger.With("component", "scheduler"),
	)
	if err := refresh.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down server")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.GracePeriod())
	defer cancel()

	if err := refresh.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown: %w", err)
	}

	return runErr
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
