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

// UpdateMatchTeams replaces the team<->table assignments of a not-started
// match. A table may hold at most one team within the match; assigning the
// same team to two matches of the same round is operator-correctable and
// only produces a warning.
func (s *FieldService) UpdateMatchTeams(ctx context.Context, divisionID, matchID uuid.UUID, assignments []fieldtypes.TeamAssignment) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateMatchTeams", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Updating match teams",
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
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("match %s is not editable", matchID)), nil
		}

		seen := make(map[uuid.UUID]uuid.UUID)
		for _, a := range assignments {
			if a.TeamID == nil {
				continue
			}
			if table, dup := seen[*a.TeamID]; dup {
				return results.Reject(results.CodeInvalidState,
					fmt.Sprintf("team %s assigned to tables %s and %s in the same match", *a.TeamID, table, a.TableID)), nil
			}
			seen[*a.TeamID] = a.TableID
		}

		for _, a := range assignments {
			slotFound := false
			for i := range match.Participants {
				if match.Participants[i].TableID == a.TableID {
					match.Participants[i].TeamID = a.TeamID
					slotFound = true
					break
				}
			}
			if !slotFound {
				return results.Reject(results.CodeNotFound, fmt.Sprintf("table %s is not part of match %s", a.TableID, matchID)), nil
			}
		}

		warnings, err := s.crossMatchWarnings(ctx, match)
		if err != nil {
			return results.OperationResult{}, err
		}

		if err := s.FieldDB.UpdateMatchParticipants(ctx, matchID, match.Participants); err != nil {
			return results.OperationResult{}, err
		}

		payload := fieldevents.MatchUpdatedPayload{Match: *match, Warnings: warnings}
		s.publishMatchUpdated(ctx, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// SwitchMatchTeams swaps the teams at one participant slot between two
// not-started matches.
func (s *FieldService) SwitchMatchTeams(ctx context.Context, divisionID, fromMatchID, toMatchID uuid.UUID, slot int) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "SwitchMatchTeams", func(ctx context.Context) (results.OperationResult, error) {
		fromMatch, err := s.FieldDB.GetMatch(ctx, fromMatchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", fromMatchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		toMatch, err := s.FieldDB.GetMatch(ctx, toMatchID)
		if errors.Is(err, fielddb.ErrMatchNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find match %s", toMatchID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if !fromMatch.IsNotStarted() || !toMatch.IsNotStarted() {
			return results.Reject(results.CodeInvalidState,
				fmt.Sprintf("matches %s/%s are not editable", fromMatchID, toMatchID)), nil
		}
		if slot < 0 || slot >= len(fromMatch.Participants) || slot >= len(toMatch.Participants) {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("slot %d is out of range", slot)), nil
		}

		fromMatch.Participants[slot].TeamID, toMatch.Participants[slot].TeamID =
			toMatch.Participants[slot].TeamID, fromMatch.Participants[slot].TeamID

		if err := s.FieldDB.UpdateMatchParticipants(ctx, fromMatchID, fromMatch.Participants); err != nil {
			return results.OperationResult{}, err
		}
		if err := s.FieldDB.UpdateMatchParticipants(ctx, toMatchID, toMatch.Participants); err != nil {
			return results.OperationResult{}, err
		}

		s.publishMatchUpdated(ctx, fieldevents.MatchUpdatedPayload{Match: *fromMatch},
			eventbus.AudienceField, eventbus.AudiencePitAdmin)
		payload := fieldevents.MatchUpdatedPayload{Match: *toMatch}
		s.publishMatchUpdated(ctx, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// crossMatchWarnings reports teams that now appear in more than one match
// of the same stage and round.
func (s *FieldService) crossMatchWarnings(ctx context.Context, match *fieldtypes.Match) ([]string, error) {
	siblings, err := s.FieldDB.ListRoundMatches(ctx, match.DivisionID, match.Stage, match.Round)
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, p := range match.Participants {
		if p.TeamID == nil {
			continue
		}
		for _, other := range siblings {
			if other.ID == match.ID {
				continue
			}
			if other.ParticipantByTeam(*p.TeamID) != nil {
				warnings = append(warnings,
					fmt.Sprintf("team %s is also assigned to match %d of round %d", *p.TeamID, other.Number, other.Round))
			}
		}
	}
	return warnings, nil
}
