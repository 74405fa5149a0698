package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"GrantReport/internal/domain"
)

// Document is the assembled report returned to the API layer.
type Document struct {
	StatusPerResearchArea     map[string]StatusCount `json:"status_per_research_area"`
	AnnualStat                AnnualStat             `json:"annual_stat"`
	AvgProcessingTime         int                    `json:"avg_processing_time"`
	LongWaitingApplicationIDs []string               `json:"long_waiting_application_ids"`
}

// Builder runs the four aggregations over one record snapshot.
// It holds no records between builds.
type Builder struct {
	clock  Clock
	opts   Options
	logger *slog.Logger
}

// NewBuilder wires the clock and options; a nil clock reads system time.
func NewBuilder(clock Clock, opts Options, logger *slog.Logger) *Builder {
	if clock == nil {
		clock = SystemClock()
	}
	return &Builder{clock: clock, opts: opts.withDefaults(), logger: logger}
}

// Build computes the full report. Any stage failure fails the build and no
// partial document is returned. ctx is checked between stages.
func (b *Builder) Build(ctx context.Context, records []domain.Application) (Document, error) {
	entries, err := snapshot(records)
	if err != nil {
		return Document{}, err
	}

	anchor := b.AnchorDay()
	b.debug("build report", "records", len(entries), "anchor", anchor.Format(domain.DateLayout))

	var doc Document
	stages := []struct {
		name string
		run  func() error
	}{
		{"status_per_research_area", func() error {
			areas, err := statusPerResearchArea(entries, b.opts.Areas)
			doc.StatusPerResearchArea = areas
			return err
		}},
		{"annual_stat", func() error {
			doc.AnnualStat = annualStat(entries, anchor, b.opts.RejectionAttribution)
			return nil
		}},
		{"avg_processing_time", func() error {
			days, err := avgProcessingDays(entries)
			doc.AvgProcessingTime = days
			return err
		}},
		{"long_waiting_application_ids", func() error {
			doc.LongWaitingApplicationIDs = longWaitingIDs(entries, anchor, b.opts.StaleAfterDays)
			return nil
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return Document{}, fmt.Errorf("%s: %w", stage.name, err)
		}
		if err := stage.run(); err != nil {
			return Document{}, fmt.Errorf("%s: %w", stage.name, err)
		}
		b.debug("stage done", "stage", stage.name)
	}

	return doc, nil
}

// AnchorDay is today's calendar date in the configured location, as midnight UTC.
func (b *Builder) AnchorDay() time.Time {
	return civilDay(b.clock.Now(), b.opts.Location)
}

func (b *Builder) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
