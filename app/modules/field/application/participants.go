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

// UpdateParticipant records presence and queue flags for one team's slot.
// Allowed at any match status; it never changes the lifecycle state.
//
// A no-show recorded after the match completed routes the team's scoresheet
// to head-referee review: a human has to confirm that scoring a no-show
// team is intentional.
func (s *FieldService) UpdateParticipant(ctx context.Context, divisionID, matchID, teamID uuid.UUID, update ParticipantUpdate) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateParticipant", func(ctx context.Context) (results.OperationResult, error) {
		match, err := s.FieldDB.GetMatch(ctx, matchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", matchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		participant := match.ParticipantByTeam(teamID)
		if participant == nil {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("team %s is not in match %s", teamID, matchID)), nil
		}

		if update.Present != nil {
			participant.Present = *update.Present
		}
		if update.Queued != nil {
			participant.Queued = *update.Queued
		}

		if err := s.FieldDB.UpdateMatchParticipants(ctx, matchID, match.Participants); err != nil {
			return results.OperationResult{}, err
		}

		if update.Present != nil && *update.Present == fieldtypes.PresenceNoShow && match.IsCompleted() {
			if err := s.escalator.EscalateNoShow(ctx, divisionID, matchID, teamID); err != nil {
				s.logger.ErrorContext(ctx, "Failed to escalate no-show scoresheet",
					slog.String("match_id", matchID.String()),
					slog.String("team_id", teamID.String()),
					slog.Any("error", err),
				)
			}
		}

		payload := fieldevents.MatchUpdatedPayload{Match: *match}
		s.publishMatchUpdated(ctx, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// UpdateMatchCalled flags that queueing has notified the match's teams.
func (s *FieldService) UpdateMatchCalled(ctx context.Context, divisionID, matchID uuid.UUID, called bool) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateMatchCalled", func(ctx context.Context) (results.OperationResult, error) {
		match, err := s.FieldDB.GetMatch(ctx, matchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", matchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if err := s.FieldDB.UpdateMatchCalled(ctx, matchID, called); err != nil {
			return results.OperationResult{}, err
		}
		match.Called = called

		payload := fieldevents.MatchUpdatedPayload{Match: *match}
		s.publishMatchUpdated(ctx, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
