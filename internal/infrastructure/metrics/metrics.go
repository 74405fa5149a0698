package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics groups the ingestion and report collectors. A nil *Metrics records nothing.
type Metrics struct {
	ApplicationsIngested prometheus.Counter
	IngestionRuns        *prometheus.CounterVec
	ReportBuilds         *prometheus.CounterVec
	ReportBuildDuration  prometheus.Histogram
	ReportCacheHits      prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "grant_applications_ingested_total",
			Help: "Total number of applications loaded from the upstream API",
		}),
		IngestionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_ingestion_runs_total",
			Help: "Total number of ingestion runs by outcome",
		}, []string{"outcome"}),
		ReportBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_report_builds_total",
			Help: "Total number of report builds by outcome",
		}, []string{"outcome"}),
		ReportBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "grant_report_build_duration_seconds",
			Help:    "Duration of report builds in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ReportCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "grant_report_cache_hits_total",
			Help: "Total number of reports served from cache",
		}),
	}
}

// ObserveIngestion records one ingestion run.
func (m *Metrics) ObserveIngestion(loaded int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IngestionRuns.WithLabelValues(outcomeFailure).Inc()
		return
	}
	m.IngestionRuns.WithLabelValues(outcomeSuccess).Inc()
	m.ApplicationsIngested.Add(float64(loaded))
}

// ObserveReportBuild records one report build.
func (m *Metrics) ObserveReportBuild(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.ReportBuildDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.ReportBuilds.WithLabelValues(outcomeFailure).Inc()
		return
	}
	m.ReportBuilds.WithLabelValues(outcomeSuccess).Inc()
}

// CacheHit counts a report served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.ReportCacheHits.Inc()
}
