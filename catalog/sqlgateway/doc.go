// Package sqlgateway implements the catalog gateways on top of a relational database.
//
// One Store serves all five tables of the catalog (books, authors, users, book_authors, loans).
// Statements are built with goqu in the configured dialect and always use placeholder arguments.
// Three database handles are supported through internal adapters: pgxpool.Pool, sql.DB and sqlx.DB.
//
// Supported dialects:
//   - postgres (default): generated ids are read with INSERT ... RETURNING id
//   - sqlite3: generated ids are read with LastInsertId; works with sql.DB and sqlx.DB only
//
// Usage examples:
//
//	// PostgreSQL with a pgx pool
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := sqlgateway.NewStoreFromPGXPool(pool, sqlgateway.WithLogger(slog.Default()))
//
//	// SQLite with database/sql
//	db, _ := sql.Open("sqlite", "file:library.db?_pragma=foreign_keys(1)")
//	store, _ := sqlgateway.NewStoreFromSQLDB(db, sqlgateway.WithDialect(sqlgateway.DialectSQLite3))
//	_ = store.EnsureSchema(ctx)
//
//	id, _ := store.Books().Create(ctx, book)
package sqlgateway
