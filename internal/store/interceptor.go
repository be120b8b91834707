package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// QueryInterceptor wraps a *sql.DB (or a transaction with the same surface)
// to provide debug logging for every query, without each sub-store needing
// to log its own SQL.
type QueryInterceptor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type loggingInterceptor struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func newLoggingInterceptor(db *sql.DB) *loggingInterceptor {
	return &loggingInterceptor{db: db, log: zap.S().Named("store")}
}

func (i *loggingInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	i.log.Debugw("query", "sql", query, "args", args)
	return i.db.QueryContext(ctx, query, args...)
}

func (i *loggingInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	i.log.Debugw("query_row", "sql", query, "args", args)
	return i.db.QueryRowContext(ctx, query, args...)
}

func (i *loggingInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	i.log.Debugw("exec", "sql", query, "args", args)
	return i.db.ExecContext(ctx, query, args...)
}
