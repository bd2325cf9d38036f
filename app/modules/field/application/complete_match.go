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

// CompleteMatch finishes a running match when its duration elapses. It is
// driven by the scheduled completion job, never by a client, and is
// idempotent against matches that were aborted or already completed in the
// meantime. Test matches revert to not-started so the table can be reused.
func (s *FieldService) CompleteMatch(ctx context.Context, divisionID, matchID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "CompleteMatch", func(ctx context.Context) (results.OperationResult, error) {
		match, err := s.FieldDB.GetMatch(ctx, matchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", matchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if !match.IsInProgress() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("match %s is not in progress", matchID)), nil
		}

		newStatus := fieldtypes.StatusCompleted
		var startTime *time.Time = match.StartTime
		if match.Stage == fieldtypes.StageTest {
			newStatus = fieldtypes.StatusNotStarted
			startTime = nil
		}
		if err := s.FieldDB.UpdateMatchStatus(ctx, matchID, newStatus, startTime); err != nil {
			return results.OperationResult{}, err
		}

		state, err := s.FieldDB.GetDivisionState(ctx, divisionID)
		if err != nil {
			return results.OperationResult{}, err
		}
		if state.IsActive(matchID) {
			state.ActiveMatchID = nil
		}

		var autoLoaded *fieldtypes.Match
		if match.Stage != fieldtypes.StageTest && state.LoadedMatchID == nil {
			autoLoaded, err = s.autoLoadNext(ctx, state)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to auto-load next match",
					slog.String("division_id", divisionID.String()),
					slog.Any("error", err),
				)
			}
		}

		if err := s.FieldDB.UpdateDivisionState(ctx, state); err != nil {
			return results.OperationResult{}, err
		}

		match.Status = newStatus
		match.StartTime = startTime

		s.logger.InfoContext(ctx, "Match completed",
			slog.String("division_id", divisionID.String()),
			slog.String("match_id", matchID.String()),
		)

		payload := fieldevents.MatchPayload{Match: *match, DivisionState: state}
		s.publishMatchEvent(ctx, fieldevents.MatchCompletedV1, payload,
			eventbus.AudienceField, eventbus.AudienceAudienceDisplay, eventbus.AudiencePitAdmin)

		if autoLoaded != nil {
			loadedPayload := fieldevents.MatchPayload{Match: *autoLoaded, DivisionState: state}
			s.publishMatchEvent(ctx, fieldevents.MatchLoadedV1, loadedPayload,
				eventbus.AudienceField, eventbus.AudienceAudienceDisplay)
		}

		return results.Succeed(&payload), nil
	})
}

// autoLoadNext loads the next not-started match of the current stage when it
// is scheduled within the auto-load window. Mutates state in place; the
// caller persists it.
func (s *FieldService) autoLoadNext(ctx context.Context, state *fieldtypes.DivisionState) (*fieldtypes.Match, error) {
	next, err := s.FieldDB.NextUnstartedMatch(ctx, state.DivisionID, state.CurrentStage)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	if time.Until(next.ScheduledTime) > fieldtypes.AutoLoadThreshold {
		return nil, nil
	}
	state.LoadedMatchID = &next.ID
	return next, nil
}
