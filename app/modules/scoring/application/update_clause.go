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
)

// UpdateScoresheetClause writes one clause value and recomputes the sheet's
// score and errors in the same commit. A completed sheet rejects edits; a
// sheet under head-referee review stays editable so the ruling can adjust
// values before resolving.
func (s *ScoringService) UpdateScoresheetClause(ctx context.Context, divisionID, sheetID uuid.UUID, missionID string, clauseIndex int, value scoringtypes.Value) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateScoresheetClause", func(ctx context.Context) (results.OperationResult, error) {
		sheet, result, err := s.editableSheet(ctx, divisionID, sheetID)
		if sheet == nil {
			return result, err
		}

		mission := s.schema.MissionByID(missionID)
		if mission == nil {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("unknown mission %q", missionID)), nil
		}
		if clauseIndex < 0 || clauseIndex >= len(mission.Clauses) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("mission %q has no clause %d", missionID, clauseIndex)), nil
		}
		if !mission.Clauses[clauseIndex].Matches(value) {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("value does not fit clause %d of mission %q", clauseIndex, missionID)), nil
		}

		if sheet.Missions == nil {
			sheet.Missions = s.schema.DefaultMissions()
		}
		values, ok := sheet.Missions[missionID]
		if !ok || len(values) != len(mission.Clauses) {
			values = mission.Defaults()
		}
		values[clauseIndex] = value
		sheet.Missions[missionID] = values

		s.recompute(sheet)
		if sheet.Status == scoringtypes.SheetNotStarted {
			sheet.Status = scoringtypes.SheetInProgress
		}
		sheet.UpdatedAt = time.Now().UTC()

		if err := s.ScoringDB.UpdateScoresheet(ctx, sheet); err != nil {
			return results.OperationResult{}, err
		}

		payload := scoringevents.ScoresheetPayload{Scoresheet: *sheet}
		s.publishScoresheetEvent(ctx, scoringevents.ScoresheetUpdatedV1, payload, eventbus.AudienceField)

		return results.Succeed(&payload), nil
	})
}

// UpdateGPRating records the gracious professionalism rating the referee
// gives alongside the score. Same edit window as clause updates.
func (s *ScoringService) UpdateGPRating(ctx context.Context, divisionID, sheetID uuid.UUID, gp int) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateGPRating", func(ctx context.Context) (results.OperationResult, error) {
		sheet, result, err := s.editableSheet(ctx, divisionID, sheetID)
		if sheet == nil {
			return result, err
		}

		if gp < 2 || gp > 4 {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("gp rating %d is out of range", gp)), nil
		}

		sheet.GP = &gp
		if sheet.Status == scoringtypes.SheetNotStarted {
			sheet.Status = scoringtypes.SheetInProgress
		}
		sheet.UpdatedAt = time.Now().UTC()

		if err := s.ScoringDB.UpdateScoresheet(ctx, sheet); err != nil {
			return results.OperationResult{}, err
		}

		payload := scoringevents.ScoresheetPayload{Scoresheet: *sheet}
		s.publishScoresheetEvent(ctx, scoringevents.ScoresheetUpdatedV1, payload, eventbus.AudienceField)

		return results.Succeed(&payload), nil
	})
}

// editableSheet loads a sheet and checks it may still be edited. A nil
// sheet means the caller should return the accompanying result and error
// as-is.
func (s *ScoringService) editableSheet(ctx context.Context, divisionID, sheetID uuid.UUID) (*scoringtypes.Scoresheet, results.OperationResult, error) {
	s.logger.InfoContext(ctx, "Editing scoresheet",
		slog.String("division_id", divisionID.String()),
		slog.String("scoresheet_id", sheetID.String()),
	)

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
	if sheet.IsCompleted() {
		return nil, results.Reject(results.CodeInvalidState, fmt.Sprintf("scoresheet %s is already completed", sheetID)), nil
	}

	return sheet, results.OperationResult{}, nil
}
