package database

import (
	"context"
	"database/sql"
)

// DB is the persistence gateway boundary. Repositories depend on this
// interface so usecase tests can substitute fakes without a running Postgres.
type DB interface {
	Ping(ctx context.Context) error
	Close() error

	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row

	// SQLDB exposes the database/sql view of the pool for the migration runner.
	SQLDB() *sql.DB
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
