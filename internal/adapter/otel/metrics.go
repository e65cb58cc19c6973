package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "planforge"

// Metrics holds all PlanForge metric instruments.
type Metrics struct {
	PlansRequested     metric.Int64Counter
	PlansCompleted     metric.Int64Counter
	PlansFailed        metric.Int64Counter
	StreamFragments    metric.Int64Counter
	GenerationDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PlansRequested, err = meter.Int64Counter("planforge.plans.requested",
		metric.WithDescription("Number of plan generations requested"))
	if err != nil {
		return nil, err
	}

	m.PlansCompleted, err = meter.Int64Counter("planforge.plans.completed",
		metric.WithDescription("Number of plan generations completed"))
	if err != nil {
		return nil, err
	}

	m.PlansFailed, err = meter.Int64Counter("planforge.plans.failed",
		metric.WithDescription("Number of plan generations failed"))
	if err != nil {
		return nil, err
	}

	m.StreamFragments, err = meter.Int64Counter("planforge.stream.fragments",
		metric.WithDescription("Number of model fragments forwarded to clients"))
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram("planforge.generation.duration_seconds",
		metric.WithDescription("Plan generation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
