package usermigrations

import (
	"context"
	"fmt"

	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users table...")
		_, err := db.NewCreateTable().Model((*userdb.User)(nil)).IfNotExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create users table: %w", err)
		}
		fmt.Println("users table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping users table...")
		_, err := db.NewDropTable().Model((*userdb.User)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop users table: %w", err)
		}
		fmt.Println("users table dropped successfully!")
		return nil
	})
}
