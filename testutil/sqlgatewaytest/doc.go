// Package sqlgatewaytest builds sqlgateway Stores for tests, picking the database handle from
// the ADAPTER_TYPE environment variable (sqlite, pgx.pool, sql.db, sqlx.db).
//
// sqlite is the default and runs against a private in-memory database, so gateway tests need
// no external services. The postgres adapters read the DSN from CATALOG_TEST_POSTGRES_DSN.
package sqlgatewaytest
