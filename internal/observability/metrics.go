package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metric name constants for the search driver's counters (§6's solver
// summary: "Plans generated", "Plans visited", "Dead ends encountered").
const (
	MetricPlansGenerated  = "pocl.plans.generated"
	MetricPlansVisited    = "pocl.plans.visited"
	MetricDeadEnds        = "pocl.dead_ends"
	MetricSearchDuration  = "pocl.search.duration"
	MetricStrategySwitch  = "pocl.strategy.switch"
)

// Metrics bundles one instrument per search-driver counter. The search
// driver does not record into them itself; values arrive only through
// the Record* methods. A no-op bundle (via NewNoopMetrics) is used
// whenever the caller did not request a live exporter.
type Metrics struct {
	PlansGenerated metric.Int64Counter
	PlansVisited   metric.Int64Counter
	DeadEnds       metric.Int64Counter
	SearchDuration metric.Float64Histogram
	StrategySwitch metric.Int64Counter
}

// NewPrometheusMetrics builds a Metrics bundle backed by a Prometheus
// exporter.
func NewPrometheusMetrics() (*Metrics, *sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("pocl")

	m, err := newMetrics(meter)
	if err != nil {
		return nil, nil, err
	}
	return m, provider, nil
}

// NewNoopMetrics builds a Metrics bundle whose instruments discard every
// recorded value, for runs with metrics disabled.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("pocl")
	m, _ := newMetrics(meter)
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	plansGenerated, err := meter.Int64Counter(MetricPlansGenerated)
	if err != nil {
		return nil, err
	}
	plansVisited, err := meter.Int64Counter(MetricPlansVisited)
	if err != nil {
		return nil, err
	}
	deadEnds, err := meter.Int64Counter(MetricDeadEnds)
	if err != nil {
		return nil, err
	}
	searchDuration, err := meter.Float64Histogram(MetricSearchDuration)
	if err != nil {
		return nil, err
	}
	strategySwitch, err := meter.Int64Counter(MetricStrategySwitch)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		PlansGenerated: plansGenerated,
		PlansVisited:   plansVisited,
		DeadEnds:       deadEnds,
		SearchDuration: searchDuration,
		StrategySwitch: strategySwitch,
	}, nil
}

// RecordGenerated increments the generated-plans counter by delta.
func (m *Metrics) RecordGenerated(ctx context.Context, delta int64) {
	m.PlansGenerated.Add(ctx, delta)
}

// RecordVisited increments the visited-plans counter by one.
func (m *Metrics) RecordVisited(ctx context.Context) {
	m.PlansVisited.Add(ctx, 1)
}

// RecordDeadEnd increments the dead-end counter by one.
func (m *Metrics) RecordDeadEnd(ctx context.Context) {
	m.DeadEnds.Add(ctx, 1)
}

// RecordStrategySwitch increments the strategy-switch counter by one.
func (m *Metrics) RecordStrategySwitch(ctx context.Context) {
	m.StrategySwitch.Add(ctx, 1)
}
