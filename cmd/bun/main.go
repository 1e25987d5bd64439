package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/photoshare/app"
	"github.com/Black-And-White-Club/photoshare/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// migrator is the part of *migrate.Migrator the commands drive.
type migrator interface {
	Init(ctx context.Context) error
	Migrate(ctx context.Context, opts ...migrate.MigrationOption) (*migrate.MigrationGroup, error)
	Rollback(ctx context.Context, opts ...migrate.MigrationOption) (*migrate.MigrationGroup, error)
	MigrationsWithStatus(ctx context.Context) (migrate.MigrationSlice, error)
}

// moduleMigrator pairs a module name with its migrator.
type moduleMigrator struct {
	name     string
	migrator migrator
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := app.NewDatabase(context.Background(), cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	modules := make([]moduleMigrator, 0, len(app.MigrationSets))
	for _, set := range app.MigrationSets {
		modules = append(modules, moduleMigrator{name: set.Name, migrator: app.NewMigrator(db, set)})
	}

	cliApp := &cli.App{
		Name:     "bun",
		Usage:    "photoshare database tooling",
		Commands: []*cli.Command{newMigrateCommand(modules, os.Stdout)},
	}

	// Subcommands see only what is left after -config.
	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		logger.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// newMigrateCommand builds the migrate subcommands. Modules are applied in
// order and rolled back in reverse.
func newMigrateCommand(modules []moduleMigrator, out io.Writer) *cli.Command {
	reversed := make([]moduleMigrator, len(modules))
	for i, m := range modules {
		reversed[len(modules)-1-i] = m
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for _, m := range modules {
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
						fmt.Fprintf(out, "%s: migration tables ready\n", m.name)
					}
					return nil
				},
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					return eachGroup(c.Context, out, modules, "migrated to", "nothing to migrate",
						func(ctx context.Context, m migrator) (*migrate.MigrationGroup, error) {
							return m.Migrate(ctx)
						})
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group of every module",
				Action: func(c *cli.Context) error {
					return eachGroup(c.Context, out, reversed, "rolled back", "nothing to roll back",
						func(ctx context.Context, m migrator) (*migrate.MigrationGroup, error) {
							return m.Rollback(ctx)
						})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range modules {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return fmt.Errorf("status %s: %w", m.name, err)
						}
						fmt.Fprintf(out, "%s:\n  applied: %s\n  pending: %s\n", m.name, ms.Applied(), ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}

func eachGroup(
	ctx context.Context,
	out io.Writer,
	modules []moduleMigrator,
	done, empty string,
	step func(context.Context, migrator) (*migrate.MigrationGroup, error),
) error {
	for _, m := range modules {
		group, err := step(ctx, m.migrator)
		if err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		if group == nil || group.IsZero() {
			fmt.Fprintf(out, "%s: %s\n", m.name, empty)
			continue
		}
		fmt.Fprintf(out, "%s: %s %s\n", m.name, done, group)
	}
	return nil
}
