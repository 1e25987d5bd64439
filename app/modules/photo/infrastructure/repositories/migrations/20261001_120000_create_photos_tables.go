package photomigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating photos and photo_tags tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS photos (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT,
					category VARCHAR(16) NOT NULL DEFAULT 'PORTRAIT',
					github_user TEXT NOT NULL,
					created TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_photos_github_user ON photos(github_user);
			`); err != nil {
				return fmt.Errorf("failed to create photos table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS photo_tags (
					photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (photo_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_photo_tags_user_id ON photo_tags(user_id);
			`); err != nil {
				return fmt.Errorf("failed to create photo_tags table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping photos and photo_tags tables...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS photo_tags; DROP TABLE IF EXISTS photos;`); err != nil {
			return fmt.Errorf("failed to drop photo tables: %w", err)
		}
		return nil
	})
}
