package fieldservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	fieldevents "github.com/openlems/lems-backend/app/modules/field/events"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// LoadMatch marks a match as the next one to run on the field. Only one
// match may be loaded per division, and only a not-started match may be
// loaded.
func (s *FieldService) LoadMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "LoadMatch", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Loading match",
			slog.String("division_id", divisionID.String()),
			slog.String("match_id", matchID.String()),
		)

		match, err := s.FieldDB.GetMatch(ctx, matchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", matchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if !match.IsNotStarted() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("match %s has already started", matchID)), nil
		}

		state, err := s.FieldDB.GetDivisionState(ctx, divisionID)
		if err != nil {
			return results.OperationResult{}, err
		}

		if state.LoadedMatchID != nil {
			return results.Reject(results.CodeSlotOccupied, fmt.Sprintf("match %s is already loaded", *state.LoadedMatchID)), nil
		}

		state.LoadedMatchID = &matchID
		if err := s.FieldDB.UpdateDivisionState(ctx, state); err != nil {
			return results.OperationResult{}, err
		}

		payload := fieldevents.MatchPayload{Match: *match, DivisionState: state}
		s.publishMatchEvent(ctx, fieldevents.MatchLoadedV1, payload,
			eventbus.AudienceField, eventbus.AudienceAudienceDisplay)

		return results.Succeed(&payload), nil
	})
}
