package fieldmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating matches and division_states tables...")

		if _, err := db.NewCreateTable().Model((*fielddb.Match)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*fielddb.DivisionState)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*fielddb.Match)(nil)).
			Index("matches_division_stage_round_idx").
			Column("division_id", "stage", "round").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Field tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping matches and division_states tables...")

		if _, err := db.NewDropTable().Model((*fielddb.Match)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*fielddb.DivisionState)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Field tables dropped successfully!")
		return nil
	})
}
