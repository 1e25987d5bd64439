package app

import (
	"context"
	"fmt"
	"log/slog"

	photomigrations "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// MigrationSet is one module's migrations.
type MigrationSet struct {
	Name       string
	Migrations *migrate.Migrations
}

// MigrationSets lists every module's migrations in apply order.
var MigrationSets = []MigrationSet{
	{Name: "user", Migrations: usermigrations.Migrations},
	{Name: "photo", Migrations: photomigrations.Migrations},
}

// NewMigrator returns a migrator that tracks set in its own tables so modules
// migrate and roll back independently.
func NewMigrator(db *bun.DB, set MigrationSet) *migrate.Migrator {
	return migrate.NewMigrator(db, set.Migrations,
		migrate.WithTableName("bun_migrations_"+set.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+set.Name),
	)
}

// Migrate initializes the migration tables and applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for _, set := range MigrationSets {
		migrator := NewMigrator(db, set)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", set.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", set.Name, err)
		}
		if group.IsZero() {
			logger.DebugContext(ctx, "No new migrations", slog.String("module", set.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module", slog.String("module", set.Name), slog.String("group", group.String()))
		}
	}
	return nil
}
