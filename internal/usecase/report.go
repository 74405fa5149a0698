package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"GrantReport/internal/domain"
	"GrantReport/internal/infrastructure/metrics"
	"GrantReport/internal/ports"
	"GrantReport/internal/report"
	"GrantReport/pkg/logger"
)

// ReportDeps wires the collaborators of the report use case.
type ReportDeps struct {
	Repository ports.ApplicationRepository
	Ingestor   *Ingestor
	Builder    *report.Builder
	Cache      ports.ReportCache
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// ReportService produces the serialised report for the current anchor day.
type ReportService struct {
	repository ports.ApplicationRepository
	ingestor   *Ingestor
	builder    *report.Builder
	cache      ports.ReportCache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewReportService constructs the report use case.
func NewReportService(deps ReportDeps) *ReportService {
	return &ReportService{
		repository: deps.Repository,
		ingestor:   deps.Ingestor,
		builder:    deps.Builder,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Generate returns the report as JSON. An empty store is loaded from upstream first.
// Cached reports are keyed by the store generation, so a report built from a
// snapshot that an ingestion has since replaced is never served again.
func (s *ReportService) Generate(ctx context.Context) ([]byte, error) {
	log := logger.FromContext(ctx, s.logger)
	day := s.builder.AnchorDay().Format(domain.DateLayout)

	if err := s.ensureLoaded(ctx, log); err != nil {
		return nil, err
	}

	if payload, ok := s.cached(ctx, log, day); ok {
		return payload, nil
	}

	apps, gen, err := s.repository.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	start := time.Now()
	doc, err := s.builder.Build(ctx, apps)
	s.metrics.ObserveReportBuild(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, gen, day, payload); err != nil {
			log.Warn("report cache write failed", "error", err)
		}
	}

	log.Info("report built", "applications", len(apps), "day", day, "generation", gen)
	return payload, nil
}

func (s *ReportService) cached(ctx context.Context, log *slog.Logger, day string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}

	gen, err := s.repository.Generation(ctx)
	if err != nil {
		log.Warn("store generation unavailable, bypassing report cache", "error", err)
		return nil, false
	}

	payload, ok, err := s.cache.Get(ctx, gen, day)
	switch {
	case err != nil:
		log.Warn("report cache read failed", "error", err)
		return nil, false
	case !ok:
		return nil, false
	}

	s.metrics.CacheHit()
	log.Debug("report served from cache", "day", day, "generation", gen)
	return payload, true
}

func (s *ReportService) ensureLoaded(ctx context.Context, log *slog.Logger) error {
	count, err := s.repository.Count(ctx)
	if err != nil {
		return fmt.Errorf("count applications: %w", err)
	}
	if count > 0 || s.ingestor == nil {
		return nil
	}

	log.Warn("no applications stored, loading from upstream first")
	if _, err := s.ingestor.Run(ctx); err != nil {
		return err
	}
	return nil
}
