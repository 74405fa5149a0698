package usecase

import (
	"context"
	"log/slog"
	"time"

	"GrantReport/internal/ports"
)

// Scheduler wires the ticker driver with the ingestion use case.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop periodic refreshes.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, ingestor: ingestor, logger: logger}
}

// Start registers ingestion with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		count, err := s.ingestor.Run(ctx)
		if s.logger == nil {
			return
		}
		if err != nil {
			s.logger.Error("scheduled refresh failed", "trigger", trigger.Format(time.RFC3339), "error", err)
			return
		}
		s.logger.Info("scheduled refresh finished", "trigger", trigger.Format(time.RFC3339), "count", count)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
