package sqlgatewaytest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway"
	"github.com/AntonStoeckl/library-catalog-go/config"
)

// Adapter type constants, read from ADAPTER_TYPE.
const (
	typeSQLite  = "sqlite"
	typePGXPool = config.AdapterPGXPool
	typeSQLDB   = config.AdapterSQLDB
	typeSQLXDB  = config.AdapterSQLXDB

	envAdapterType = "ADAPTER_TYPE"
	envPostgresDSN = "CATALOG_TEST_POSTGRES_DSN"
)

// Wrapper abstracts over the different database handles a Store can be built from.
type Wrapper interface {
	GetStore() *sqlgateway.Store
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *sqlgateway.Store
}

func (w *PGXPoolWrapper) GetStore() *sqlgateway.Store {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing, for postgres (lib/pq) and sqlite (modernc).
type SQLDBWrapper struct {
	db    *sql.DB
	store *sqlgateway.Store
}

func (w *SQLDBWrapper) GetStore() *sqlgateway.Store {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *sqlgateway.Store
}

func (w *SQLXWrapper) GetStore() *sqlgateway.Store {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// AdapterTypeFromEnv returns the adapter type selected by ADAPTER_TYPE, sqlite by default.
func AdapterTypeFromEnv() string {
	adapterType := strings.ToLower(os.Getenv(envAdapterType))
	if adapterType == "" {
		return typeSQLite
	}

	return adapterType
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE with an empty schema in place.
// The default is a private in-memory SQLite database. The postgres adapters need CATALOG_TEST_POSTGRES_DSN,
// without it the calling test is skipped.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlgateway.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	adapterType := AdapterTypeFromEnv()

	var wrapper Wrapper

	switch adapterType {
	case typeSQLite:
		db, err := config.OpenSQLDB(ctx, sqliteTestConfig())
		require.NoError(t, err, "error opening sqlite in test setup")

		options = append([]sqlgateway.Option{sqlgateway.WithDialect(sqlgateway.DialectSQLite3)}, options...)
		store, err := sqlgateway.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typePGXPool:
		pool, err := config.OpenPGXPool(ctx, postgresTestConfig(t, adapterType))
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := sqlgateway.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db, err := config.OpenSQLDB(ctx, postgresTestConfig(t, adapterType))
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlgateway.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db, err := config.OpenSQLX(ctx, postgresTestConfig(t, adapterType))
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlgateway.NewStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetStore().EnsureSchema(ctx), "error creating schema")
	CleanUp(t, wrapper)
	t.Cleanup(wrapper.Close)

	return wrapper
}

// CleanUp removes all rows from the catalog tables of the wrapper's store.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	tables := wrapper.GetStore().Tables()
	ordered := []string{tables.Loans, tables.BookAuthors, tables.Users, tables.Authors, tables.Books}

	if wrapper.GetStore().Dialect() == sqlgateway.DialectPostgres {
		Exec(t, wrapper, fmt.Sprintf(
			"TRUNCATE TABLE %q, %q, %q, %q, %q RESTART IDENTITY",
			ordered[0], ordered[1], ordered[2], ordered[3], ordered[4],
		))

		return
	}

	for _, table := range ordered {
		Exec(t, wrapper, fmt.Sprintf("DELETE FROM %q", table))
	}
}

// Exec runs a raw statement against the wrapper's database.
func Exec(t testing.TB, wrapper Wrapper, query string) {
	t.Helper()

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), query)

	case *SQLDBWrapper:
		_, err = w.db.Exec(query)

	case *SQLXWrapper:
		_, err = w.db.Exec(query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error executing %q", query)
}

// CountRows returns the number of rows in a table of the wrapper's database.
func CountRows(t testing.TB, wrapper Wrapper, table string) int {
	t.Helper()

	query := fmt.Sprintf("SELECT count(*) FROM %q", table)

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&cnt)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *SQLXWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error counting rows of %s", table)

	return cnt
}

func sqliteTestConfig() config.Config {
	return config.Config{
		DatabaseDSN:    config.SQLiteMemoryDSN(),
		AdapterType:    config.AdapterSQLDB,
		Dialect:        config.DialectSQLite3,
		ConnectTimeout: 5 * time.Second,
	}
}

func postgresTestConfig(t testing.TB, adapterType string) config.Config {
	dsn := os.Getenv(envPostgresDSN)
	if dsn == "" {
		t.Skipf("%s is not set, skipping %s test", envPostgresDSN, adapterType)
	}

	return config.Config{
		DatabaseDSN:    dsn,
		AdapterType:    adapterType,
		Dialect:        config.DialectPostgres,
		MaxOpenConns:   10,
		ConnectTimeout: 5 * time.Second,
	}
}
