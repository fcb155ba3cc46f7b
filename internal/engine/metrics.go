package engine

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/aetherlight/readygate/internal/engine"

var (
	checkCounter    metric.Int64Counter
	checkDuration   metric.Float64Histogram
	cacheHitCounter metric.Int64Counter
	timeoutCounter  metric.Int64Counter
	gapsDetected    metric.Int64Counter
	criticalCounter metric.Int64Counter
)

// initMetrics initializes OpenTelemetry instruments for the engine.
// Called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	checkCounter, err = meter.Int64Counter(
		"readygate.engine.checks",
		metric.WithDescription("Total number of workflow readiness checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create check counter: %v", err))
	}

	checkDuration, err = meter.Float64Histogram(
		"readygate.engine.check.duration",
		metric.WithDescription("Duration of workflow readiness checks"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create check duration histogram: %v", err))
	}

	cacheHitCounter, err = meter.Int64Counter(
		"readygate.engine.cache.hits",
		metric.WithDescription("Number of checks answered from the result cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create cache hit counter: %v", err))
	}

	timeoutCounter, err = meter.Int64Counter(
		"readygate.engine.timeouts",
		metric.WithDescription("Number of checks that returned partial results on timeout"),
		metric.WithUnit("{timeout}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create timeout counter: %v", err))
	}

	gapsDetected, err = meter.Int64Counter(
		"readygate.engine.gaps",
		metric.WithDescription("Number of gaps detected across checks"),
		metric.WithUnit("{gap}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create gap counter: %v", err))
	}

	criticalCounter, err = meter.Int64Counter(
		"readygate.engine.critical_junctions",
		metric.WithDescription("Number of checks that signalled a critical junction"),
		metric.WithUnit("{junction}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create critical junction counter: %v", err))
	}
}

func init() {
	initMetrics()
}
