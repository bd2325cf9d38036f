package fieldservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	fieldevents "github.com/openlems/lems-backend/app/modules/field/events"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// AbortMatch cancels a loaded or running match and returns it to the
// schedulable not-started state. It is the designed recovery path for
// real-world failures (absent team, equipment fault); the match can be
// reloaded later. Aborting a match that is neither loaded nor running is
// rejected, not silently accepted.
func (s *FieldService) AbortMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "AbortMatch", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Aborting match",
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

		state, err := s.FieldDB.GetDivisionState(ctx, divisionID)
		if err != nil {
			return results.OperationResult{}, err
		}

		loaded := state.IsLoaded(matchID)
		active := state.IsActive(matchID) && match.IsInProgress()
		if !loaded && !active {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("match %s is neither loaded nor in progress", matchID)), nil
		}

		if active {
			if err := s.FieldDB.UpdateMatchStatus(ctx, matchID, fieldtypes.StatusNotStarted, nil); err != nil {
				return results.OperationResult{}, err
			}
			if err := s.scheduler.CancelMatchCompletion(ctx, matchID); err != nil {
				s.logger.ErrorContext(ctx, "Failed to cancel match completion job",
					slog.String("match_id", matchID.String()),
					slog.Any("error", err),
				)
			}
		}

		if loaded {
			state.LoadedMatchID = nil
		}
		if state.IsActive(matchID) {
			state.ActiveMatchID = nil
		}
		if err := s.FieldDB.UpdateDivisionState(ctx, state); err != nil {
			return results.OperationResult{}, err
		}

		match.Status = fieldtypes.StatusNotStarted
		match.StartTime = nil

		payload := fieldevents.MatchPayload{Match: *match, DivisionState: state}
		s.publishMatchEvent(ctx, fieldevents.MatchAbortedV1, payload,
			eventbus.AudienceField, eventbus.AudienceAudienceDisplay, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
