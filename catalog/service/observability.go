package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// Metric names recorded by the services.
const (
	OperationDurationMetric = "catalog_operation_duration_seconds"
	OperationErrorsMetric   = "catalog_operation_errors_total"
	LoanConflictsMetric     = "catalog_loan_conflicts_total"
	CacheEntriesMetric      = "catalog_cache_entries"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error types used as the error_type label.
const (
	ErrorTypeValidation = "validation"
	ErrorTypeNotFound   = "not_found"
	ErrorTypeConflict   = "conflict"
	ErrorTypeStorage    = "storage"
	ErrorTypeUnknown    = "unknown"
)

// Operation names.
const (
	OperationCreate         = "create"
	OperationUpdate         = "update"
	OperationDelete         = "delete"
	OperationReload         = "reload"
	OperationCascadeDelete  = "cascade_delete"
	OperationDeleteByBook   = "delete_by_book"
	OperationDeleteByAuthor = "delete_by_author"
)

const (
	spanNamePrefix = "catalog."

	labelEntity    = "entity"
	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	spanAttrDurationMS = "duration_ms"

	logMsgOperation       = "catalog operation: "
	logMsgOperationFailed = "catalog operation failed"
	logMsgCascadeFailed   = "cascade delete of book-author relations failed"
	logMsgCascadeEmpty    = "cascade delete found no book-author relations"
	logMsgLoanConflict    = "loan rejected: book already loaned"

	logAttrEntity     = "entity"
	logAttrOperation  = "operation"
	logAttrID         = "id"
	logAttrBookID     = "book_id"
	logAttrAuthorID   = "author_id"
	logAttrUserID     = "user_id"
	logAttrRemoved    = "removed"
	logAttrCount      = "count"
	logAttrError      = "error"
	logAttrDurationMS = "duration_ms"
	logAttrStartDate  = "start_date"
	logAttrEndDate    = "end_date"
)

// ClassifyError maps an error to one of the error_type label values.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return ErrorTypeValidation
	case errors.Is(err, catalog.ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, catalog.ErrConflict):
		return ErrorTypeConflict
	case errors.Is(err, catalog.ErrStorage):
		return ErrorTypeStorage
	default:
		return ErrorTypeUnknown
	}
}

// BuildOperationLabels creates the standard label set of an operation metric.
func BuildOperationLabels(entity, operation, status string) map[string]string {
	return map[string]string{
		labelEntity:    entity,
		labelOperation: operation,
		labelStatus:    status,
	}
}

// logOperation logs a completed mutation at info level if a logger is configured.
func (s settings) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (s settings) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s settings) logError(ctx context.Context, message string, err error, args ...any) {
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

func (s settings) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s settings) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s settings) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

// recordOperationError counts one failed operation, labeled with its error category.
func (s settings) recordOperationError(ctx context.Context, entity, operation string, err error) {
	s.incrementCounter(ctx, OperationErrorsMetric, map[string]string{
		labelEntity:    entity,
		labelOperation: operation,
		labelErrorType: ClassifyError(err),
	})
}

// recordCacheEntries records the current size of an in-memory collection.
func (s settings) recordCacheEntries(ctx context.Context, entity string, count int) {
	s.recordValue(ctx, CacheEntriesMetric, float64(count), map[string]string{labelEntity: entity})
}

// recordLoanConflict counts one rejected loan.
func (s settings) recordLoanConflict(ctx context.Context, operation string) {
	s.incrementCounter(ctx, LoanConflictsMetric, map[string]string{
		labelEntity:    catalog.LoanEntityName,
		labelOperation: operation,
	})
}

// operationObserver covers one public write operation: its span, duration metric, and failure log.
type operationObserver struct {
	settings  settings
	entity    string
	operation string
	start     time.Time
	span      catalog.SpanContext
}

// startOperation begins observing an operation and returns the context to pass downstream.
func (s settings) startOperation(
	ctx context.Context,
	entity string,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	observer := &operationObserver{
		settings:  s,
		entity:    entity,
		operation: operation,
		start:     time.Now(),
	}

	if s.tracingCollector == nil {
		return observer, ctx
	}

	spanAttrs := map[string]string{
		labelEntity:    entity,
		labelOperation: operation,
	}
	for k, v := range attrs {
		spanAttrs[k] = v
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNamePrefix+entity+"."+operation, spanAttrs)
	observer.span = span

	return observer, newCtx
}

// finish completes the observation and returns err unchanged, so callers can write `return o.finish(ctx, err)`.
func (o *operationObserver) finish(ctx context.Context, err error) error {
	duration := time.Since(o.start)

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	o.settings.recordDuration(ctx, OperationDurationMetric, duration, BuildOperationLabels(o.entity, o.operation, status))

	if err != nil {
		errorType := ClassifyError(err)
		o.settings.recordOperationError(ctx, o.entity, o.operation, err)
		o.settings.logError(
			ctx,
			logMsgOperationFailed,
			err,
			logAttrEntity, o.entity,
			logAttrOperation, o.operation,
			logAttrDurationMS, toMilliseconds(duration),
		)

		if o.span != nil {
			o.span.SetStatus(StatusError)
			o.span.AddAttribute(labelErrorType, errorType)
			o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
			o.settings.tracingCollector.FinishSpan(o.span, StatusError, map[string]string{labelErrorType: errorType})
		}

		return err
	}

	if o.span != nil {
		o.span.SetStatus(StatusSuccess)
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
		o.settings.tracingCollector.FinishSpan(o.span, StatusSuccess, nil)
	}

	return nil
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func idAttr(id catalog.ID) string {
	return strconv.FormatInt(id, 10)
}
