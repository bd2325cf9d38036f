package judgingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating judging_sessions table...")

		if _, err := db.NewCreateTable().Model((*judgingdb.Session)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*judgingdb.Session)(nil)).
			Index("judging_sessions_division_room_idx").
			Column("division_id", "room_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Judging sessions table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping judging_sessions table...")

		if _, err := db.NewDropTable().Model((*judgingdb.Session)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Judging sessions table dropped successfully!")
		return nil
	})
}
