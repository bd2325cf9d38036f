// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
	"github.com/openlems/lems-backend/config"
)

// DBService satisfies the db.Database interface
type DBService struct {
	FieldDB   *fielddb.FieldDBImpl
	JudgingDB *judgingdb.JudgingDBImpl
	ScoringDB *scoringdb.ScoringDBImpl
	db        *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(cfg.DSN)
	if err != nil {
		log.Printf("NewBunDBService - Failed to connect to PostgreSQL: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bunDB(sqldb)

	dbService := &DBService{
		FieldDB:   &fielddb.FieldDBImpl{DB: db},
		JudgingDB: &judgingdb.JudgingDBImpl{DB: db},
		ScoringDB: &scoringdb.ScoringDBImpl{DB: db},
		db:        db,
	}

	// Use the correct model types from their respective modules
	db.RegisterModel(&fielddb.Match{})
	db.RegisterModel(&fielddb.DivisionState{})
	db.RegisterModel(&judgingdb.Session{})
	db.RegisterModel(&scoringdb.Scoresheet{})

	return dbService, nil
}

// bunDB returns a new bun.DB for given sql.DB connection pool.
func bunDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	return db
}

func pgConn(dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
