package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoresheets table...")

		if _, err := db.NewCreateTable().Model((*scoringdb.Scoresheet)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*scoringdb.Scoresheet)(nil)).
			Index("scoresheets_match_team_idx").
			Column("match_id", "team_id").
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Scoresheets table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoresheets table...")

		if _, err := db.NewDropTable().Model((*scoringdb.Scoresheet)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Scoresheets table dropped successfully!")
		return nil
	})
}
