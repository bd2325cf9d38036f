package fielddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
)

// FieldDBImpl is the bun-backed implementation of FieldDB.
type FieldDBImpl struct {
	DB *bun.DB
}

var _ FieldDB = (*FieldDBImpl)(nil)

func (db *FieldDBImpl) GetMatch(ctx context.Context, matchID uuid.UUID) (*fieldtypes.Match, error) {
	match := new(Match)
	err := db.DB.NewSelect().
		Model(match).
		Where("id = ?", matchID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}
	return match.toDomain(), nil
}

func (db *FieldDBImpl) ListMatches(ctx context.Context, divisionID uuid.UUID) ([]fieldtypes.Match, error) {
	var models []Match
	err := db.DB.NewSelect().
		Model(&models).
		Where("division_id = ?", divisionID).
		Order("scheduled_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	matches := make([]fieldtypes.Match, len(models))
	for i := range models {
		matches[i] = *models[i].toDomain()
	}
	return matches, nil
}

func (db *FieldDBImpl) ListRoundMatches(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage, round int) ([]fieldtypes.Match, error) {
	var models []Match
	err := db.DB.NewSelect().
		Model(&models).
		Where("division_id = ?", divisionID).
		Where("stage = ?", stage).
		Where("round = ?", round).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list round matches: %w", err)
	}
	matches := make([]fieldtypes.Match, len(models))
	for i := range models {
		matches[i] = *models[i].toDomain()
	}
	return matches, nil
}

// NextUnstartedMatch returns the earliest not-started match of the stage,
// or nil when the stage has none left.
func (db *FieldDBImpl) NextUnstartedMatch(ctx context.Context, divisionID uuid.UUID, stage fieldtypes.Stage) (*fieldtypes.Match, error) {
	match := new(Match)
	err := db.DB.NewSelect().
		Model(match).
		Where("division_id = ?", divisionID).
		Where("stage = ?", stage).
		Where("status = ?", fieldtypes.StatusNotStarted).
		Order("scheduled_time ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find next unstarted match: %w", err)
	}
	return match.toDomain(), nil
}

func (db *FieldDBImpl) UpdateMatchStatus(ctx context.Context, matchID uuid.UUID, status fieldtypes.Status, startTime *time.Time) error {
	res, err := db.DB.NewUpdate().
		Model((*Match)(nil)).
		Set("status = ?", status).
		Set("start_time = ?", startTime).
		Set("updated_at = current_timestamp").
		Where("id = ?", matchID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	return requireRow(res, ErrMatchNotFound)
}

func (db *FieldDBImpl) UpdateMatchCalled(ctx context.Context, matchID uuid.UUID, called bool) error {
	res, err := db.DB.NewUpdate().
		Model((*Match)(nil)).
		Set("called = ?", called).
		Set("updated_at = current_timestamp").
		Where("id = ?", matchID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update match called flag: %w", err)
	}
	return requireRow(res, ErrMatchNotFound)
}

func (db *FieldDBImpl) UpdateMatchParticipants(ctx context.Context, matchID uuid.UUID, participants []fieldtypes.Participant) error {
	res, err := db.DB.NewUpdate().
		Model((*Match)(nil)).
		Set("participants = ?", participants).
		Set("updated_at = current_timestamp").
		Where("id = ?", matchID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update match participants: %w", err)
	}
	return requireRow(res, ErrMatchNotFound)
}

func (db *FieldDBImpl) GetDivisionState(ctx context.Context, divisionID uuid.UUID) (*fieldtypes.DivisionState, error) {
	state := new(DivisionState)
	err := db.DB.NewSelect().
		Model(state).
		Where("division_id = ?", divisionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDivisionStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch division state: %w", err)
	}
	return state.toDomain(), nil
}

func (db *FieldDBImpl) UpdateDivisionState(ctx context.Context, state *fieldtypes.DivisionState) error {
	model := &DivisionState{
		DivisionID:      state.DivisionID,
		LoadedMatchID:   state.LoadedMatchID,
		ActiveMatchID:   state.ActiveMatchID,
		CurrentStage:    state.CurrentStage,
		CurrentSession:  state.CurrentSession,
		AudienceDisplay: state.AudienceDisplay,
	}
	res, err := db.DB.NewUpdate().
		Model(model).
		Column("loaded_match_id", "active_match_id", "current_stage", "current_session", "audience_display").
		Set("updated_at = current_timestamp").
		Where("division_id = ?", state.DivisionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update division state: %w", err)
	}
	return requireRow(res, ErrDivisionStateNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
