package sqlgateway

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway/internal/adapters"
)

const (
	logMsgBuildQueryFailed   = "failed to build sql query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgGeneratedIDFailed  = "failed to read generated id"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgRowNotFound        = "statement affected no rows"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "sqlgateway operation: "
	logMsgRowCreated         = "row created"
	logMsgRowUpdated         = "row updated"
	logMsgRowsDeleted        = "rows deleted"
	logMsgSchemaEnsured      = "schema ensured"
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrTable             = "table"
	logAttrID                = "id"
	logAttrDurationMS        = "duration_ms"
	logAttrRowsAffected      = "rows_affected"
	logAttrDialect           = "dialect"
	actionSelect             = "select"
	actionInsert             = "insert"
	actionUpdate             = "update"
	actionDelete             = "delete"
	actionDDL                = "ddl"
	actionPing               = "ping"
	colID                    = "id"
	colTitle                 = "title"
	colISBN                  = "isbn"
	colName                  = "name"
	colStartDate             = "start_date"
	colEndDate               = "end_date"
	colUserID                = "user_id"
	colBookID                = "book_id"
	colAuthorID              = "author_id"
)

// Store is the relational implementation of the catalog gateways.
// It is safe for concurrent use as long as the underlying database handle is.
type Store struct {
	db               adapters.DBAdapter
	dialectName      string
	dialect          goqu.DialectWrapper
	tables           TableNames
	logger           catalog.Logger
	contextualLogger catalog.ContextualLogger
	metricsCollector catalog.MetricsCollector
	tracingCollector catalog.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
// Only the postgres dialect is supported with pgx.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	s, err := newStore(adapters.NewPGXAdapter(db), options...)
	if err != nil {
		return nil, err
	}

	if s.dialectName != DialectPostgres {
		return nil, catalog.ErrUnsupportedDialect
	}

	return s, nil
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		dialectName: DialectPostgres,
		tables:      DefaultTableNames(),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.dialect = goqu.Dialect(s.dialectName)

	return s, nil
}

// Dialect returns the configured dialect name.
func (s *Store) Dialect() string {
	return s.dialectName
}

// Tables returns the configured table names.
func (s *Store) Tables() TableNames {
	return s.tables
}

// Books returns the gateway for the books table.
func (s *Store) Books() catalog.Gateway[catalog.Book] {
	return newTableGateway(s, s.tables.Books, bookMapping)
}

// Authors returns the gateway for the authors table.
func (s *Store) Authors() catalog.Gateway[catalog.Author] {
	return newTableGateway(s, s.tables.Authors, authorMapping)
}

// Users returns the gateway for the users table.
func (s *Store) Users() catalog.Gateway[catalog.User] {
	return newTableGateway(s, s.tables.Users, userMapping)
}

// Loans returns the gateway for the loans table.
func (s *Store) Loans() catalog.Gateway[catalog.Loan] {
	return newTableGateway(s, s.tables.Loans, loanMapping)
}

// BookAuthors returns the gateway for the book_authors join table.
func (s *Store) BookAuthors() catalog.RelationGateway {
	return relationGateway{store: s, table: s.tables.BookAuthors}
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.db.Ping(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrDialect, s.dialectName)
		s.recordStatement(ctx, actionPing, "", statusError, duration)
		s.recordStatementError(ctx, actionPing, "")

		return errors.Join(catalog.ErrStorage, ErrPingFailed, err)
	}

	s.recordStatement(ctx, actionPing, "", statusSuccess, duration)

	return nil
}

// returnsGeneratedIDs reports whether INSERT ... RETURNING is used to read generated ids.
func (s *Store) returnsGeneratedIDs() bool {
	return s.dialectName == DialectPostgres
}

// buildFailed logs and wraps a goqu build error.
func (s *Store) buildFailed(ctx context.Context, action, table string, err error) error {
	s.logError(ctx, logMsgBuildQueryFailed, err, logAttrTable, table)
	s.recordStatementError(ctx, action, table)

	return errors.Join(catalog.ErrStorage, ErrBuildingQueryFailed, err)
}

// query executes a statement returning rows, with timing, logging, metrics, and a span.
func (s *Store) query(
	ctx context.Context,
	action string,
	table string,
	failure error,
	sqlQuery string,
	args []any,
) (adapters.DBRows, error) {

	tracing, ctx := s.startStatementTracing(ctx, action, table)

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery, logAttrTable, table)
		s.recordStatement(ctx, action, table, statusError, duration)
		s.recordStatementError(ctx, action, table)
		tracing.finishError(errorTypeDatabaseQuery, duration)

		return nil, errors.Join(catalog.ErrStorage, failure, queryErr)
	}

	s.recordStatement(ctx, action, table, statusSuccess, duration)
	tracing.finishSuccess(duration)

	return rows, nil
}

// exec executes a statement without result rows, with timing, logging, metrics, and a span.
func (s *Store) exec(
	ctx context.Context,
	action string,
	table string,
	failure error,
	sqlQuery string,
	args []any,
) (adapters.DBResult, error) {

	tracing, ctx := s.startStatementTracing(ctx, action, table)

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery, logAttrTable, table)
		s.recordStatement(ctx, action, table, statusError, duration)
		s.recordStatementError(ctx, action, table)
		tracing.finishError(errorTypeDatabaseExec, duration)

		return nil, errors.Join(catalog.ErrStorage, failure, execErr)
	}

	s.recordStatement(ctx, action, table, statusSuccess, duration)
	tracing.finishSuccess(duration)

	return result, nil
}

// rowsAffected reads the affected row count of an exec result.
func (s *Store) rowsAffected(ctx context.Context, action, table string, result adapters.DBResult) (int64, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err, logAttrTable, table)
		s.recordStatementError(ctx, action, table)

		return 0, errors.Join(catalog.ErrStorage, ErrGettingRowsAffectedFailed, err)
	}

	return affected, nil
}

// closeRows closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
