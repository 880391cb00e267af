package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// TracingCollector implements catalog.TracingCollector using the OpenTelemetry tracing API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a TracingCollector using the given tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	spanAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		spanAttrs = append(spanAttrs, attribute.String(key, value))
	}

	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(spanAttrs...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs, sets the status, and ends the span. Foreign SpanContext values are ignored.
func (t *TracingCollector) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	for key, value := range attrs {
		otelSpanCtx.span.SetAttributes(attribute.String(key, value))
	}

	otelSpanCtx.setSpanStatus(status)
	otelSpanCtx.span.End()
}

var _ catalog.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements catalog.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the status string to an OpenTelemetry status code.
func (s *OTelSpanContext) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *OTelSpanContext) setSpanStatus(status string) {
	switch status {
	case "ok", "success":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "Operation failed")
	case "conflict":
		s.span.SetStatus(codes.Error, "Loan conflict")
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "Operation cancelled")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

var _ catalog.SpanContext = (*OTelSpanContext)(nil)
