package scoringdb

import (
	"context"

	"github.com/google/uuid"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
)

// ScoringDB is the durable record store boundary for scoresheets.
type ScoringDB interface {
	GetScoresheet(ctx context.Context, sheetID uuid.UUID) (*scoringtypes.Scoresheet, error)
	GetMatchTeamScoresheet(ctx context.Context, matchID, teamID uuid.UUID) (*scoringtypes.Scoresheet, error)
	ListScoresheets(ctx context.Context, divisionID uuid.UUID) ([]scoringtypes.Scoresheet, error)

	// UpdateScoresheet persists the sheet's mission values, computed
	// results, GP rating, and status in one atomic commit.
	UpdateScoresheet(ctx context.Context, sheet *scoringtypes.Scoresheet) error
}
