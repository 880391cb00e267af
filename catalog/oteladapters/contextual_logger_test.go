package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/library-catalog-go/catalog/oteladapters"
)

func Test_NewSlogBridgeLogger_Construction(t *testing.T) {
	// act
	logger := oteladapters.NewSlogBridgeLogger("catalog")
	withProvider := oteladapters.NewSlogBridgeLoggerWithProvider("catalog", noop.NewLoggerProvider())

	// assert
	assert.NotNil(t, logger)
	assert.NotNil(t, withProvider)
	assert.NotPanics(t, func() {
		withProvider.InfoContext(context.Background(), "book created", "id", int64(1))
	})
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// setup
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: select", "duration_ms", 0.25)
	logger.InfoContext(ctx, "catalog operation: book created", "id", int64(7))
	logger.WarnContext(ctx, "cascade delete found no book-author relations", "entity", "book")
	logger.ErrorContext(ctx, "catalog operation failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"duration_ms":0.25`)
	assert.Contains(t, output, `"id":7`)
	assert.Contains(t, output, `"entity":"book"`)
}

func Test_OTelLogger_AllLevels(t *testing.T) {
	// setup
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("catalog"))
	ctx := context.Background()

	// act & assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", "key", "value")
		logger.InfoContext(ctx, "info message", "id", int64(3), "ok", true)
		logger.WarnContext(ctx, "warn message", "dangling")
		logger.ErrorContext(ctx, "error message", 42, "not a key")
	})
}
