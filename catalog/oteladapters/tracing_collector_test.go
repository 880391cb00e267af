package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-catalog-go/catalog/oteladapters"
	"github.com/AntonStoeckl/library-catalog-go/testutil/testdoubles"
)

func newTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("catalog")), exporter
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "catalog.book.create", map[string]string{
		"entity":    "book",
		"operation": "create",
	})
	spanCtx.AddAttribute("duration_ms", "0.42")
	collector.FinishSpan(spanCtx, "success", map[string]string{"id": "1"})

	// assert
	assert.NotNil(t, ctx)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "catalog.book.create", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "entity", "book")
	assertSpanHasAttribute(t, span, "operation", "create")
	assertSpanHasAttribute(t, span, "duration_ms", "0.42")
	assertSpanHasAttribute(t, span, "id", "1")
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "ok", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "conflict", expectedCode: codes.Error},
		{status: "canceled", expectedCode: codes.Error},
		{status: "something else", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			collector, exporter := newTracingCollector()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "catalog.loan.create", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_NestedSpansShareTrace(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "catalog.book.delete", nil)
	_, child := collector.StartSpan(ctx, "catalog.sql.delete", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContext(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act & assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(&testdoubles.SpySpanContext{}, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("span %s has no attribute %s", span.Name, key)
}
