package sqlgateway

import (
	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

const (
	// DialectPostgres selects the PostgreSQL dialect (default).
	DialectPostgres = "postgres"

	// DialectSQLite3 selects the SQLite dialect.
	DialectSQLite3 = "sqlite3"
)

// TableNames holds the table names used by a Store.
type TableNames struct {
	Books       string
	Authors     string
	Users       string
	BookAuthors string
	Loans       string
}

// DefaultTableNames returns the table names created by EnsureSchema when no override is given.
func DefaultTableNames() TableNames {
	return TableNames{
		Books:       "books",
		Authors:     "authors",
		Users:       "users",
		BookAuthors: "book_authors",
		Loans:       "loans",
	}
}

func (t TableNames) validate() error {
	for _, name := range []string{t.Books, t.Authors, t.Users, t.BookAuthors, t.Loans} {
		if name == "" {
			return catalog.ErrEmptyTableName
		}
	}

	return nil
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithDialect sets the SQL dialect. Supported values are DialectPostgres and DialectSQLite3.
func WithDialect(dialect string) Option {
	return func(s *Store) error {
		switch dialect {
		case DialectPostgres, DialectSQLite3:
			s.dialectName = dialect
			return nil

		default:
			return catalog.ErrUnsupportedDialect
		}
	}
}

// WithTableNames overrides the table names. Every name must be non-empty.
func WithTableNames(tables TableNames) Option {
	return func(s *Store) error {
		if err := tables.validate(); err != nil {
			return err
		}

		s.tables = tables

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: created, updated, and deleted rows (production-safe)
// Warn level: non-critical issues like failing to close rows
// Error level: failures that cause an operation to fail.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set it is preferred over the plain logger, so trace ids flow into the log records.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives statement durations and error counts labeled by operation and table.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store. Every executed statement gets its own span.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
