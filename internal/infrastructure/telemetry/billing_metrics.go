package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MeterName is the instrumentation scope of the billing metrics
	MeterName = "github.com/wrls/backend/billing"

	attrTrigger = "trigger"
)

// FlagMetrics records supplementary billing flag outcomes
type FlagMetrics struct {
	processed *Histogram
	failures  *Counter
}

// NewFlagMetrics creates the supplementary billing flag instruments
func NewFlagMetrics(meter metric.Meter) (*FlagMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	processed, err := NewHistogram(meter,
		"supplementary_billing_flag_duration",
		"Time taken to process a supplementary billing flag",
		"s",
		0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
	)
	if err != nil {
		return nil, err
	}

	failures, err := NewCounter(meter,
		"supplementary_billing_flag_failures_total",
		"Supplementary billing flags that failed to process",
		"{flag}",
	)
	if err != nil {
		return nil, err
	}

	return &FlagMetrics{processed: processed, failures: failures}, nil
}

// RecordProcessed records a successfully processed flag
func (m *FlagMetrics) RecordProcessed(ctx context.Context, trigger string, elapsed time.Duration) {
	m.processed.RecordDuration(ctx, elapsed, attribute.String(attrTrigger, trigger))
}

// RecordFailure records a flag that failed to process
func (m *FlagMetrics) RecordFailure(ctx context.Context, trigger string) {
	m.failures.Inc(ctx, attribute.String(attrTrigger, trigger))
}

// ReissueJob reissues the flagged bills of every region
type ReissueJob interface {
	RunAll(ctx context.Context) error
}

// InstrumentedReissueJob records the duration and outcome of every reissue run
type InstrumentedReissueJob struct {
	job      ReissueJob
	duration *Histogram
	runs     *Counter
}

// NewInstrumentedReissueJob wraps job with reissue run instruments
func NewInstrumentedReissueJob(job ReissueJob, meter metric.Meter) (*InstrumentedReissueJob, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	duration, err := NewHistogram(meter,
		"reissue_run_duration",
		"Time taken to reissue the flagged bills of every region",
		"s",
	)
	if err != nil {
		return nil, err
	}

	runs, err := NewCounter(meter,
		"reissue_runs_total",
		"Reissue runs by outcome",
		"{run}",
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedReissueJob{job: job, duration: duration, runs: runs}, nil
}

// RunAll runs the wrapped job and records its outcome
func (j *InstrumentedReissueJob) RunAll(ctx context.Context) error {
	start := time.Now()
	err := j.job.RunAll(ctx)

	outcome := attribute.String("outcome", "success")
	if err != nil {
		outcome = attribute.String("outcome", "failure")
	}
	j.duration.RecordDuration(ctx, time.Since(start), outcome)
	j.runs.Inc(ctx, outcome)

	return err
}
