package scoringservice

import (
	"context"

	"github.com/google/uuid"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// Service defines the scoresheet workflow operations. All state-changing
// operations run on the serialized command path for their division.
type Service interface {
	UpdateScoresheetClause(ctx context.Context, divisionID, sheetID uuid.UUID, missionID string, clauseIndex int, value scoringtypes.Value) (results.OperationResult, error)
	UpdateGPRating(ctx context.Context, divisionID, sheetID uuid.UUID, gp int) (results.OperationResult, error)
	SubmitScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID) (results.OperationResult, error)
	EscalateScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID, reason string) (results.OperationResult, error)
	ResolveScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID, role jwt.Role) (results.OperationResult, error)

	// EscalateNoShow routes a team's sheet to head-referee review after a
	// no-show was recorded on an already completed match.
	EscalateNoShow(ctx context.Context, divisionID, matchID, teamID uuid.UUID) error
}
