// Package oteladapters provides OpenTelemetry implementations of the catalog observability interfaces.
//
// Pass them to sqlgateway.Store and the service constructors to get spans, metrics, and
// trace-correlated logs without implementing the interfaces yourself:
//
//	tracing := oteladapters.NewTracingCollector(otel.Tracer("catalog"))
//	metrics := oteladapters.NewMetricsCollector(otel.Meter("catalog"))
//	logger := oteladapters.NewSlogBridgeLogger("catalog")
//
//	library, err := service.NewLibrary(ctx, gateways,
//		service.WithTracing(tracing),
//		service.WithMetrics(metrics),
//		service.WithContextualLogger(logger),
//	)
package oteladapters
