package fielddb

import (
	"context"
	"time"

	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
)

// FieldDB is the durable record store boundary for the field module. Every
// write is an atomic single-document commit; callers never see torn state.
type FieldDB interface {
	GetMatch(ctx context.Context, matchID uuid.UUID) (*fieldtypes.Match, error)
	ListMatches(ctx context.Context, divisionID uuid.UUID) ([]fieldtypes.Match, error)
	ListRoundMatches(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage, round int) ([]fieldtypes.Match, error)
	NextUnstartedMatch(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage) (*fieldtypes.Match, error)

	UpdateMatchStatus(ctx context.Context, matchID uuid.UUID, status fieldtypes.Status, startTime *time.Time) error
	UpdateMatchCalled(ctx context.Context, matchID uuid.UUID, called bool) error
	UpdateMatchParticipants(ctx context.Context, matchID uuid.UUID, participants []fieldtypes.Participant) error

	GetDivisionState(ctx context.Context, divisionID uuid.UUID) (*fieldtypes.DivisionState, error)
	UpdateDivisionState(ctx context.Context, state *fieldtypes.DivisionState) error
}
