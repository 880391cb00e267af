package service

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

var (
	ErrNilClock      = errors.New("nil clock supplied")
	ErrNilDependency = errors.New("nil service dependency supplied")
)

// settings is shared by all services. Options a service does not use are ignored by it,
// so one option list can configure a whole Library.
type settings struct {
	logger                    catalog.Logger
	contextualLogger          catalog.ContextualLogger
	metricsCollector          catalog.MetricsCollector
	tracingCollector          catalog.TracingCollector
	clock                     func() time.Time
	strictBookCascade         bool
	emptyLoanResultAsNotFound bool
}

func buildSettings(options ...Option) (settings, error) {
	s := settings{clock: time.Now}

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// Option defines a functional option for configuring the services.
type Option func(*settings) error

// WithLogger sets the logger.
// Info level: created, updated, deleted, and reloaded entities
// Warn level: cascade deletions that failed or found nothing to delete
// Error level: failed operations.
func WithLogger(logger catalog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. When set it is preferred over the plain logger.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
// It receives operation durations, error counts, loan conflicts, and cache sizes.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector. Every public write operation gets its own span.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(s *settings) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithClock replaces time.Now as the source of a new loan's start date.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithStrictBookCascade makes RelationService.DeleteByBookID fail with catalog.ErrNotFound
// (and catalog.ErrNoRelationsForBook) when the book had no relations.
// DeleteByAuthorID stays a silent no-op in that case.
func WithStrictBookCascade() Option {
	return func(s *settings) error {
		s.strictBookCascade = true
		return nil
	}
}

// WithEmptyLoanResultAsNotFound makes FindLoansByUserID and FindLoansByBookID fail with
// catalog.ErrNotFound (and catalog.ErrNoLoansFound) instead of returning an empty slice.
func WithEmptyLoanResultAsNotFound() Option {
	return func(s *settings) error {
		s.emptyLoanResultAsNotFound = true
		return nil
	}
}

// WithStrictParity enables both WithStrictBookCascade and WithEmptyLoanResultAsNotFound.
func WithStrictParity() Option {
	return func(s *settings) error {
		s.strictBookCascade = true
		s.emptyLoanResultAsNotFound = true

		return nil
	}
}
