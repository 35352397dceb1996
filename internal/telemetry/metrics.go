package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/finops-sre/opsprobe"

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Dispatcher metrics
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram

	// Scenario metrics
	ScenariosTotal       metric.Int64Counter
	ScenarioDuration     metric.Float64Histogram
	CleanupWarningsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.RequestsTotal, _ = meter.Int64Counter(
		"opsprobe.requests.total",
		metric.WithDescription("Total number of HTTP requests dispatched"),
		metric.WithUnit("{request}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"opsprobe.requests.duration",
		metric.WithDescription("Duration of dispatched HTTP requests"),
		metric.WithUnit("ms"),
	)

	m.ScenariosTotal, _ = meter.Int64Counter(
		"opsprobe.scenarios.total",
		metric.WithDescription("Total number of scenario executions by outcome"),
		metric.WithUnit("{scenario}"),
	)

	m.ScenarioDuration, _ = meter.Float64Histogram(
		"opsprobe.scenarios.duration",
		metric.WithDescription("Duration of scenario executions"),
		metric.WithUnit("ms"),
	)

	m.CleanupWarningsTotal, _ = meter.Int64Counter(
		"opsprobe.scenarios.cleanup_warnings.total",
		metric.WithDescription("Total number of cleanup steps that failed and were reported as warnings"),
		metric.WithUnit("{warning}"),
	)

	return m
}
