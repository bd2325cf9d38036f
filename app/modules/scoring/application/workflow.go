package scoringservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	scoringevents "github.com/openlems/lems-backend/app/modules/scoring/events"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// SubmitScoresheet signs a sheet off as the referee's final word. A sheet
// with outstanding mission or validator errors cannot be submitted.
func (s *ScoringService) SubmitScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "SubmitScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		sheet, result, err := s.loadSheet(ctx, divisionID, sheetID)
		if sheet == nil {
			return result, err
		}

		if sheet.Status != scoringtypes.SheetInProgress {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s is %s, not in progress", sheetID, sheet.Status)), nil
		}
		if sheet.HasErrors() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s still has unresolved errors", sheetID)), nil
		}

		sheet.Status = scoringtypes.SheetCompleted
		sheet.UpdatedAt = time.Now().UTC()
		if err := s.ScoringDB.UpdateScoresheet(ctx, sheet); err != nil {
			return results.OperationResult{}, err
		}

		payload := scoringevents.ScoresheetPayload{Scoresheet: *sheet}
		s.publishScoresheetEvent(ctx, scoringevents.ScoresheetUpdatedV1, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// EscalateScoresheet hands a sheet to the head referee over a rule
// ambiguity or a disputed call.
func (s *ScoringService) EscalateScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID, reason string) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "EscalateScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		sheet, result, err := s.loadSheet(ctx, divisionID, sheetID)
		if sheet == nil {
			return result, err
		}

		if sheet.Status != scoringtypes.SheetInProgress && !sheet.IsCompleted() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s cannot be escalated while %s", sheetID, sheet.Status)), nil
		}

		payload, err := s.escalate(ctx, sheet, reason)
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.Succeed(payload), nil
	})
}

// ResolveScoresheet closes a head-referee review. Only the head referee
// may rule.
func (s *ScoringService) ResolveScoresheet(ctx context.Context, divisionID, sheetID uuid.UUID, role jwt.Role) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "ResolveScoresheet", func(ctx context.Context) (results.OperationResult, error) {
		if role != jwt.RoleHeadReferee {
			return results.Reject(results.CodeForbidden, fmt.Sprintf("role %q may not resolve a scoresheet", role)), nil
		}

		sheet, result, err := s.loadSheet(ctx, divisionID, sheetID)
		if sheet == nil {
			return result, err
		}

		if !sheet.IsWaiting() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s is not waiting for the head referee", sheetID)), nil
		}
		if sheet.HasErrors() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s still has unresolved errors", sheetID)), nil
		}

		sheet.Status = scoringtypes.SheetCompleted
		sheet.UpdatedAt = time.Now().UTC()
		if err := s.ScoringDB.UpdateScoresheet(ctx, sheet); err != nil {
			return results.OperationResult{}, err
		}

		payload := scoringevents.ScoresheetPayload{Scoresheet: *sheet}
		s.publishScoresheetEvent(ctx, scoringevents.ScoresheetResolvedV1, payload,
			eventbus.AudienceField, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// EscalateNoShow implements the cross-module escalation port used by the
// field module when a no-show is recorded after the match completed.
func (s *ScoringService) EscalateNoShow(ctx context.Context, divisionID, matchID, teamID uuid.UUID) error {
	_, err := s.serviceWrapper(ctx, "EscalateNoShow", func(ctx context.Context) (results.OperationResult, error) {
		sheet, err := s.ScoringDB.GetMatchTeamScoresheet(ctx, matchID, teamID)
		if err != nil {
			return results.OperationResult{}, err
		}
		if sheet.IsWaiting() {
			return results.Succeed(nil), nil
		}

		if _, err := s.escalate(ctx, sheet, "no-show recorded after match completion"); err != nil {
			return results.OperationResult{}, err
		}
		return results.Succeed(nil), nil
	})
	if errors.Is(err, scoringdb.ErrScoresheetNotFound) {
		s.logger.WarnContext(ctx, "No scoresheet to escalate for no-show",
			slog.String("match_id", matchID.String()),
			slog.String("team_id", teamID.String()),
		)
		return nil
	}
	return err
}

func (s *ScoringService) escalate(ctx context.Context, sheet *scoringtypes.Scoresheet, reason string) (*scoringevents.ScoresheetPayload, error) {
	sheet.Status = scoringtypes.SheetWaitingHeadRef
	sheet.UpdatedAt = time.Now().UTC()
	if err := s.ScoringDB.UpdateScoresheet(ctx, sheet); err != nil {
		return nil, err
	}

	payload := scoringevents.ScoresheetPayload{Scoresheet: *sheet, Reason: reason}
	s.publishScoresheetEvent(ctx, scoringevents.ScoresheetEscalatedV1, payload,
		eventbus.AudienceField, eventbus.AudiencePitAdmin)

	return &payload, nil
}

// loadSheet loads a sheet scoped to a division. A nil sheet means the
// caller should return the accompanying result and error as-is.
func (s *ScoringService) loadSheet(ctx context.Context, divisionID, sheetID uuid.UUID) (*scoringtypes.Scoresheet, results.OperationResult, error) {
	sheet, err := s.ScoringDB.GetScoresheet(ctx, sheetID)
	if errors.Is(err, scoringdb.ErrScoresheetNotFound) {
		return nil, results.Reject(results.CodeNotFound, fmt.Sprintf("could not find scoresheet %s", sheetID)), nil
	}
	if err != nil {
		return nil, results.OperationResult{}, err
	}
	if sheet.DivisionID != divisionID {
		return nil, results.Reject(results.CodeNotFound, fmt.Sprintf("scoresheet %s does not belong to division %s", sheetID, divisionID)), nil
	}
	return sheet, results.OperationResult{}, nil
}
