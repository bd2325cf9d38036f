package fieldservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
	fieldevents "github.com/openlems/lems-backend/app/modules/field/events"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// StartMatch transitions the loaded match to in-progress. The loaded slot is
// cleared and the active slot set in the same commit, so observers never see
// both pointers referencing different matches. Completion is scheduled for
// MatchLength from now.
func (s *FieldService) StartMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "StartMatch", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Starting match",
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

		if !state.IsLoaded(matchID) {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("match %s is not the loaded match", matchID)), nil
		}

		startTime := time.Now()
		if err := s.FieldDB.UpdateMatchStatus(ctx, matchID, fieldtypes.StatusInProgress, &startTime); err != nil {
			return results.OperationResult{}, err
		}

		state.LoadedMatchID = nil
		state.ActiveMatchID = &matchID
		// The first ranking match started advances the division out of the
		// practice stage.
		if match.Stage == fieldtypes.StageRanking && state.CurrentStage == fieldtypes.StagePractice {
			state.CurrentStage = fieldtypes.StageRanking
		}
		if err := s.FieldDB.UpdateDivisionState(ctx, state); err != nil {
			return results.OperationResult{}, err
		}

		if err := s.scheduler.ScheduleMatchCompletion(ctx, divisionID, matchID, startTime.Add(fieldtypes.MatchLength)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to schedule match completion",
				slog.String("match_id", matchID.String()),
				slog.Any("error", err),
			)
		}

		match.Status = fieldtypes.StatusInProgress
		match.StartTime = &startTime

		payload := fieldevents.MatchPayload{Match: *match, DivisionState: state}
		s.publishMatchEvent(ctx, fieldevents.MatchStartedV1, payload,
			eventbus.AudienceField, eventbus.AudienceAudienceDisplay, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
