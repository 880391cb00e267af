package sqlgateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

const (
	metricSQLDuration = "catalog_sql_duration_seconds"
	metricSQLErrors   = "catalog_sql_errors_total"

	spanNamePrefix     = "catalog.sql."
	spanAttrOperation  = "operation"
	spanAttrTable      = "table"
	spanAttrDialect    = "db.system"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"

	labelStatus = "status"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeDatabaseQuery = "database_query"
	errorTypeDatabaseExec  = "database_exec"
)

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s *Store) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s *Store) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {

	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordStatement records the duration of one statement if a metrics collector is configured.
func (s *Store) recordStatement(
	ctx context.Context,
	action string,
	table string,
	status string,
	duration time.Duration,
) {

	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: action,
		spanAttrTable:     table,
		labelStatus:       status,
	}

	// Use context-aware method if available
	if contextualCollector, ok := s.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricSQLDuration, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricSQLDuration, duration, labels)
	}
}

// recordStatementError counts one failed statement if a metrics collector is configured.
func (s *Store) recordStatementError(ctx context.Context, action, table string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: action,
		spanAttrTable:     table,
		labelStatus:       statusError,
	}

	if contextualCollector, ok := s.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricSQLErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricSQLErrors, labels)
	}
}

// statementTracingObserver encapsulates the span lifecycle of one statement.
type statementTracingObserver struct {
	store *Store
	span  catalog.SpanContext
}

// startStatementTracing starts a span for one statement if a tracing collector is configured.
func (s *Store) startStatementTracing(
	ctx context.Context,
	action string,
	table string,
) (*statementTracingObserver, context.Context) {

	observer := &statementTracingObserver{store: s}

	if s.tracingCollector == nil {
		return observer, ctx
	}

	attrs := map[string]string{
		spanAttrOperation: action,
		spanAttrTable:     table,
		spanAttrDialect:   s.dialectName,
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNamePrefix+action, attrs)
	observer.span = span

	return observer, newCtx
}

// finishSuccess completes the span for a successful statement.
func (o *statementTracingObserver) finishSuccess(duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.span.AddAttribute(spanAttrDurationMS, o.formatDuration(duration))
	o.store.tracingCollector.FinishSpan(o.span, statusSuccess, nil)
}

// finishError completes the span with error details.
func (o *statementTracingObserver) finishError(errorType string, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)
	o.span.AddAttribute(spanAttrDurationMS, o.formatDuration(duration))
	o.store.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

func (o *statementTracingObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.store.toMilliseconds(duration))
}
