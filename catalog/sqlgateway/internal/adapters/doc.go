// Package adapters provide database adapter implementations for the SQL gateways.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the gateways to work with any supported connection type.
//
// Statements are always executed with placeholder arguments.
package adapters
