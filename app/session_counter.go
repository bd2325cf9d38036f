package app

import (
	"context"

	"github.com/google/uuid"

	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	judgingservice "github.com/openlems/lems-backend/app/modules/judging/application"
)

// divisionSessionCounter advances the division-wide current session number
// kept on the field module's division state. Judging commands run on the
// same per-division serializer as field commands, so the read-modify-write
// here never races a field operation.
type divisionSessionCounter struct {
	fieldDB fielddb.FieldDB
}

var _ judgingservice.SessionCounter = (*divisionSessionCounter)(nil)

func (c *divisionSessionCounter) BumpCurrentSession(ctx context.Context, divisionID uuid.UUID, number int) (*int, error) {
	state, err := c.fieldDB.GetDivisionState(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	if number <= state.CurrentSession {
		return nil, nil
	}

	state.CurrentSession = number
	if err := c.fieldDB.UpdateDivisionState(ctx, state); err != nil {
		return nil, err
	}
	return &state.CurrentSession, nil
}
