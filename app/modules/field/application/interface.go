package fieldservice

import (
	"context"

	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// Service is the match state machine. Every method returns a rejection
// payload (not an error) when a precondition fails; errors are reserved
// for infrastructure failures. No mutation and no broadcast happen on a
// rejection.
type Service interface {
	LoadMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error)
	StartMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error)
	CompleteMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error)
	AbortMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error)
	UpdateParticipant(ctx context.Context, divisionID, matchID, teamID uuid.UUID, update ParticipantUpdate) (results.OperationResult, error)
	UpdateMatchTeams(ctx context.Context, divisionID, matchID uuid.UUID, assignments []fieldtypes.TeamAssignment) (results.OperationResult, error)
	SwitchMatchTeams(ctx context.Context, divisionID, fromMatchID, toMatchID uuid.UUID, slot int) (results.OperationResult, error)
	UpdateMatchCalled(ctx context.Context, divisionID, matchID uuid.UUID, called bool) (results.OperationResult, error)
	UpdateAudienceDisplay(ctx context.Context, divisionID uuid.UUID, screen fieldtypes.AudienceDisplayScreen, role jwt.Role) (results.OperationResult, error)
}

// ParticipantUpdate carries the mutable per-slot flags; nil fields are
// left untouched.
type ParticipantUpdate struct {
	Present *fieldtypes.Presence `json:"present,omitempty"`
	Queued  *bool                `json:"queued,omitempty"`
}
