package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	dbConnectTimeout = 30 * time.Second
	dbMaxOpenConns   = 20
)

// NewDatabase opens a bun DB on Postgres and waits until it answers a ping.
func NewDatabase(ctx context.Context, dsn string, logger *slog.Logger) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(dbMaxOpenConns)
	sqldb.SetMaxIdleConns(dbMaxOpenConns / 2)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.WarnContext(ctx, "Database not ready",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(dbConnectTimeout),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.InfoContext(ctx, "Database connection established", slog.Int("attempts", attempt))
	return db, nil
}
