//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/photoshare/app"
	"github.com/Black-And-White-Club/photoshare/integration_tests/containers"
)

// appTables lists every application table truncated between tests.
var appTables = []string{"photo_tags", "photos", "users"}

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	Ctx           context.Context
	Cancel        context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	NatsURL       string
	Logger        *slog.Logger
}

// Options selects which optional containers a TestEnvironment starts.
type Options struct {
	NATS bool
}

// NewTestEnvironment starts Postgres (and NATS when requested), opens a bun DB
// on the pgx driver and applies every module migration.
func NewTestEnvironment(opts Options) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:    ctx,
		Cancel: cancel,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	env.PgContainer = pgContainer

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := app.Migrate(ctx, env.DB, env.Logger); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if opts.NATS {
		natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
		if err != nil {
			env.Cleanup()
			return nil, err
		}
		env.NatsContainer = natsContainer
		env.NatsURL = natsURL
	}

	return env, nil
}

// Reset truncates every application table.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := TruncateTables(env.Ctx, env.DB, appTables...); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}

// Cleanup closes connections and terminates containers.
func (env *TestEnvironment) Cleanup() {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(context.Background())
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(context.Background())
	}
	env.Cancel()
}

// TruncateTables truncates the specified tables.
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}
