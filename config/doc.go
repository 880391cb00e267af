// Package config provides the runtime configuration of the library catalog and
// factory functions for the database handles the sqlgateway supports.
//
// Configuration is read from CATALOG_* environment variables. The handle constructors
// (OpenPGXPool, OpenSQLDB, OpenSQLX) apply the pool settings from the Config and verify the
// connection with a ping bounded by ConnectTimeout.
//
// PostgreSQL is reached through pgx or lib/pq, SQLite through the pure Go modernc.org/sqlite driver.
package config
