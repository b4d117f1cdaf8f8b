package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	unitDimensionless = "1"
	unitMilliseconds  = "ms"
	unitBytes         = "By"
)

//nolint:gochecknoglobals // OpenTelemetry histogram boundaries must be global for reuse
var defaultMillisecondsBoundaries = []float64{
	0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000,
}

// Views returns the histogram view for the latency measure of pkg.
func Views(pkg string) []sdkmetric.View {
	return []sdkmetric.View{
		func(inst sdkmetric.Instrument) (sdkmetric.Stream, bool) {
			if inst.Kind != sdkmetric.InstrumentKindHistogram || inst.Name != pkg+"/latency" {
				return sdkmetric.Stream{}, false
			}
			return sdkmetric.Stream{
				Name:        inst.Name,
				Description: "Distribution of method latency, by method and status.",
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: defaultMillisecondsBoundaries,
				},
				AttributeFilter: func(kv attribute.KeyValue) bool {
					return kv.Key == AttrMethodKey || kv.Key == AttrStatusKey
				},
			}, true
		},
	}
}

func meter(pkg string) metric.Meter {
	return otel.Meter(pkg, metric.WithInstrumentationAttributes(AttrPackageKey.String(pkg)))
}

// LatencyMeasure returns the method latency histogram of pkg.
func LatencyMeasure(pkg string) metric.Float64Histogram {
	m, err := meter(pkg).Float64Histogram(
		pkg+"/latency",
		metric.WithDescription("Latency distribution of method calls"),
		metric.WithUnit(unitMilliseconds),
	)
	if err != nil {
		// Only invalid instrument names fail here.
		panic(fmt.Sprintf("pkg=%q: %v", pkg, err))
	}
	return m
}

// DimensionlessMeasure returns a counter named pkg+meterName.
func DimensionlessMeasure(pkg string, meterName string, description string) metric.Int64Counter {
	m, err := meter(pkg).Int64Counter(
		pkg+meterName,
		metric.WithDescription(description),
		metric.WithUnit(unitDimensionless),
	)
	if err != nil {
		panic(fmt.Sprintf("pkg=%q meter=%q: %v", pkg, meterName, err))
	}
	return m
}

// BytesMeasure returns a byte counter named pkg+meterName.
func BytesMeasure(pkg string, meterName string, description string) metric.Int64Counter {
	m, err := meter(pkg).Int64Counter(pkg+meterName, metric.WithDescription(description), metric.WithUnit(unitBytes))
	if err != nil {
		panic(fmt.Sprintf("pkg=%q meter=%q: %v", pkg, meterName, err))
	}
	return m
}
