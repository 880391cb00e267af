package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	defaultMinConnections    = int32(1)
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
)

// PGXPoolConfig creates a pgxpool.Config from the Config.
func PGXPoolConfig(c Config) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}

	if c.MaxOpenConns > 0 {
		dbConfig.MaxConns = int32(c.MaxOpenConns)
	}

	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = c.ConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool creates a pgx pool and pings the database.
func OpenPGXPool(ctx context.Context, c Config) (*pgxpool.Pool, error) {
	if c.Dialect != DialectPostgres {
		return nil, ErrPGXRequiresPostgres
	}

	dbConfig, err := PGXPoolConfig(c)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	if pingErr := pool.Ping(pingCtx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return pool, nil
}

// OpenSQLDB opens a *sql.DB with lib/pq for postgres or modernc.org/sqlite for sqlite3 and pings it.
// SQLite handles are limited to one open connection.
func OpenSQLDB(ctx context.Context, c Config) (*sql.DB, error) {
	db, err := sql.Open(c.DriverName(), c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	configureSQLDB(db, c)

	pingCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return db, nil
}

// OpenSQLX opens a *sqlx.DB the same way OpenSQLDB opens a *sql.DB.
func OpenSQLX(ctx context.Context, c Config) (*sqlx.DB, error) {
	db, err := OpenSQLDB(ctx, c)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, c.DriverName()), nil
}

func configureSQLDB(db *sql.DB, c Config) {
	if c.Dialect == DialectSQLite3 {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)

		return
	}

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(int(defaultMinConnections))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
