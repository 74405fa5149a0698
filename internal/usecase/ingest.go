package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"GrantReport/internal/infrastructure/metrics"
	"GrantReport/internal/ports"
	"GrantReport/pkg/logger"
)

const progressStep = 1000

// IngestDeps wires the driven adapters used by ingestion.
type IngestDeps struct {
	Source     ports.ApplicationSource
	Repository ports.ApplicationRepository
	Cache      ports.ReportCache
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Ingestor replaces the stored application set with a fresh upstream copy.
type Ingestor struct {
	source     ports.ApplicationSource
	repository ports.ApplicationRepository
	cache      ports.ReportCache
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu sync.Mutex
}

// NewIngestor constructs the ingestion component.
func NewIngestor(deps IngestDeps) *Ingestor {
	return &Ingestor{
		source:     deps.Source,
		repository: deps.Repository,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Run fetches every application and swaps the stored set. Runs are serialised.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	loaded, err := i.run(ctx)
	i.metrics.ObserveIngestion(loaded, err)
	return loaded, err
}

func (i *Ingestor) run(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx, i.logger)

	log.Info("loading applications from upstream")
	apps, err := i.source.FetchAll(ctx, progressLogger(log))
	if err != nil {
		return 0, fmt.Errorf("fetch applications: %w", err)
	}

	if err := i.repository.Replace(ctx, apps); err != nil {
		return 0, fmt.Errorf("store applications: %w", err)
	}

	if i.cache != nil {
		if err := i.cache.Invalidate(ctx); err != nil {
			log.Warn("report cache invalidation failed", "error", err)
		}
	}

	log.Info("applications loaded", "count", len(apps))
	return len(apps), nil
}

// progressLogger logs each time another progressStep records have arrived.
func progressLogger(log *slog.Logger) func(loaded, total int) {
	reported := 0
	return func(loaded, total int) {
		if loaded/progressStep == reported/progressStep && loaded != total {
			return
		}
		reported = loaded
		percent := 100.0
		if total > 0 {
			percent = float64(loaded) * 100 / float64(total)
		}
		log.Info("loading applications", "loaded", loaded, "total", total, "percent", fmt.Sprintf("%.1f", percent))
	}
}
