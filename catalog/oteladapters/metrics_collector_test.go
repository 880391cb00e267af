package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/library-catalog-go/catalog/oteladapters"
)

func newMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("catalog")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}

	return metricdata.Metrics{}, false
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	collector, reader := newMetricsCollector()
	labels := map[string]string{"entity": "book", "operation": "create", "status": "success"}

	// act
	collector.RecordDuration("catalog_operation_duration_seconds", 150*time.Millisecond, labels)
	collector.RecordDurationContext(context.Background(), "catalog_operation_duration_seconds", 50*time.Millisecond, labels)

	// assert
	m, found := findMetric(collect(t, reader), "catalog_operation_duration_seconds")
	require.True(t, found)

	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected a float64 histogram")
	require.Len(t, histogram.DataPoints, 1)

	point := histogram.DataPoints[0]
	assert.Equal(t, uint64(2), point.Count)
	assert.InDelta(t, 0.2, point.Sum, 0.0001)

	entity, hasEntity := point.Attributes.Value(attribute.Key("entity"))
	assert.True(t, hasEntity)
	assert.Equal(t, "book", entity.AsString())
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	collector, reader := newMetricsCollector()
	labels := map[string]string{"entity": "loan"}

	// act
	collector.IncrementCounter("catalog_loan_conflicts_total", labels)
	collector.IncrementCounterContext(context.Background(), "catalog_loan_conflicts_total", labels)
	collector.IncrementCounter("catalog_loan_conflicts_total", map[string]string{"entity": "book"})

	// assert
	m, found := findMetric(collect(t, reader), "catalog_loan_conflicts_total")
	require.True(t, found)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum")
	assert.True(t, sum.IsMonotonic)
	require.Len(t, sum.DataPoints, 2)

	totals := make(map[string]int64)
	for _, point := range sum.DataPoints {
		entity, _ := point.Attributes.Value(attribute.Key("entity"))
		totals[entity.AsString()] = point.Value
	}
	assert.Equal(t, map[string]int64{"loan": 2, "book": 1}, totals)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// setup
	collector, reader := newMetricsCollector()
	labels := map[string]string{"entity": "user"}

	// act
	collector.RecordValue("catalog_cache_entries", 3, labels)
	collector.RecordValueContext(context.Background(), "catalog_cache_entries", 5, labels)

	// assert
	m, found := findMetric(collect(t, reader), "catalog_cache_entries")
	require.True(t, found)

	gauge, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok, "expected a float64 gauge")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 5.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_ConcurrentInstrumentCreation(t *testing.T) {
	// setup
	collector, reader := newMetricsCollector()
	done := make(chan struct{})

	// act
	for range 10 {
		go func() {
			defer func() { done <- struct{}{} }()
			collector.IncrementCounter("catalog_operation_errors_total", map[string]string{"entity": "book"})
		}()
	}
	for range 10 {
		<-done
	}

	// assert
	m, found := findMetric(collect(t, reader), "catalog_operation_errors_total")
	require.True(t, found)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(10), sum.DataPoints[0].Value)
}
