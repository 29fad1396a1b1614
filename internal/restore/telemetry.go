// ABOUTME: OpenTelemetry spans and metrics for restore runs.
// ABOUTME: Uses the global providers, which are no-ops unless the host installs one.
package restore

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("drillbook.restore")
	meter  = otel.Meter("drillbook.restore")
)

var (
	restoreTotal    metric.Int64Counter
	restoreDuration metric.Float64Histogram
	reconcileTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		restoreTotal, err = meter.Int64Counter(
			"drillbook_restore_total",
			metric.WithDescription("Restore runs by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		restoreDuration, err = meter.Float64Histogram(
			"drillbook_restore_duration_seconds",
			metric.WithDescription("Duration of restore runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		reconcileTotal, err = meter.Int64Counter(
			"drillbook_reconcile_total",
			metric.WithDescription("Reconcile runs by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startRestoreSpan(ctx context.Context, userID, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "restore.Service.Restore",
		trace.WithAttributes(
			attribute.String("drillbook.user_id", userID),
			attribute.String("drillbook.run_id", runID),
		),
	)
}

func recordRestore(ctx context.Context, d time.Duration, outcome string) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	restoreTotal.Add(ctx, 1, attrs)
	restoreDuration.Record(ctx, d.Seconds(), attrs)
}

func recordReconcile(ctx context.Context, outcome string) {
	if err := initMetrics(); err != nil {
		return
	}
	reconcileTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
