package adapters

import (
	"context"
	"errors"
)

// ErrLastInsertIDUnsupported is returned by adapters whose driver cannot report generated keys.
var ErrLastInsertIDUnsupported = errors.New("last insert id is not supported by this adapter")

// DBAdapter defines the interface for database operations needed by the gateways.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Ping(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
