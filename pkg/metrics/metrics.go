// Package metrics holds the pipeline-level Prometheus metrics and pushes the
// default registry to a Pushgateway at the end of a batch run.
//
// Transport metrics live next to the code that updates them:
//
// Quota (pkg/quota):
//   - yt_quota_used_units (Gauge): units spent in the current quota day
//   - yt_quota_blocks_total (Counter): requests blocked at the reserve
//   - yt_quota_throttles_total (Counter): requests delayed near the reserve
//
// Cache (pkg/cache):
//   - yt_cache_hits_total, yt_cache_misses_total (Counter)
//   - yt_cache_size_bytes (Gauge)
//   - yt_conditional_requests_total, yt_304_responses_total (Counter)
//   - yt_cache_errors_total{operation} (Counter)
//
// Requests (pkg/client):
//   - yt_requests_total{resource, status} (Counter)
//   - yt_request_duration_seconds{resource} (Histogram)
//   - yt_errors_total{class} (Counter)
//   - yt_retries_total, yt_retry_backoff_seconds, yt_retry_exhausted_total{error_class}
//
// Stages (this package):
//   - yt_stage_runs_total{stage, status} (Counter)
//   - yt_stage_duration_seconds{stage} (Histogram)
//   - yt_stage_items_total{stage, status} (Counter)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(yt_cache_hits_total[1d])) /
//	(sum(rate(yt_cache_hits_total[1d])) + sum(rate(yt_cache_misses_total[1d])))
//
//	# Comment fetches skipped per run
//	yt_stage_items_total{stage="comments", status="skipped"}
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/report"
)

// Registry is the registerer every package's promauto metrics land in.
var Registry = prometheus.DefaultRegisterer

// Job is the Pushgateway job name.
const Job = "yt_pipeline"

var (
	StageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_stage_runs_total",
		Help: "Stage attempts by outcome (ok, failed)",
	}, []string{"stage", "status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yt_stage_duration_seconds",
		Help:    "Wall time of a stage attempt",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	StageItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_stage_items_total",
		Help: "Per-item outcomes reported by a stage (videos, charts)",
	}, []string{"stage", "status"})
)

// ObserveStage records one stage attempt.
func ObserveStage(stage string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	StageRuns.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveSummary adds a stage's per-item outcomes.
func ObserveSummary(stage string, s *report.Summary) {
	if s == nil {
		return
	}
	StageItems.WithLabelValues(stage, string(report.StatusOK)).Add(float64(s.Succeeded()))
	StageItems.WithLabelValues(stage, string(report.StatusSkipped)).Add(float64(s.Skipped()))
}

// Push sends everything in gatherer to the Pushgateway at url, grouped by
// run id. A nil gatherer pushes the default registry.
func Push(ctx context.Context, url, runID string, gatherer prometheus.Gatherer) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	err := push.New(url, Job).
		Gatherer(gatherer).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
