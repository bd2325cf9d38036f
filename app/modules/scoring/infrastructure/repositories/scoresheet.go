package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
)

var ErrScoresheetNotFound = errors.New("scoresheet not found")

// Scoresheet is the bun model for the scoresheets table. Mission values and
// computed results live in one jsonb document so every write is a single
// atomic commit.
type Scoresheet struct {
	bun.BaseModel `bun:"table:scoresheets,alias:ss"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	DivisionID uuid.UUID `bun:"division_id,notnull,type:uuid"`
	MatchID    uuid.UUID `bun:"match_id,notnull,type:uuid"`
	TeamID     uuid.UUID `bun:"team_id,notnull,type:uuid"`
	Stage      string    `bun:"stage,notnull"`
	Round      int       `bun:"round,notnull"`

	Status    scoringtypes.SheetStatus `bun:"status,notnull"`
	Data      sheetData                `bun:"data,type:jsonb"`
	UpdatedAt time.Time                `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type sheetData struct {
	Missions        map[string][]scoringtypes.Value `json:"missions"`
	Score           int                             `json:"score"`
	MissionErrors   []scoringtypes.MissionError     `json:"mission_errors"`
	ValidatorErrors []string                        `json:"validator_errors"`
	GP              *int                            `json:"gp,omitempty"`
}

func (m *Scoresheet) toDomain() *scoringtypes.Scoresheet {
	return &scoringtypes.Scoresheet{
		ID:              m.ID,
		DivisionID:      m.DivisionID,
		MatchID:         m.MatchID,
		TeamID:          m.TeamID,
		Stage:           m.Stage,
		Round:           m.Round,
		Status:          m.Status,
		Missions:        m.Data.Missions,
		Score:           m.Data.Score,
		MissionErrors:   m.Data.MissionErrors,
		ValidatorErrors: m.Data.ValidatorErrors,
		GP:              m.Data.GP,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ScoringDBImpl is the bun-backed implementation of ScoringDB.
type ScoringDBImpl struct {
	DB *bun.DB
}

var _ ScoringDB = (*ScoringDBImpl)(nil)

func (db *ScoringDBImpl) GetScoresheet(ctx context.Context, sheetID uuid.UUID) (*scoringtypes.Scoresheet, error) {
	sheet := new(Scoresheet)
	err := db.DB.NewSelect().
		Model(sheet).
		Where("id = ?", sheetID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScoresheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoresheet: %w", err)
	}
	return sheet.toDomain(), nil
}

func (db *ScoringDBImpl) GetMatchTeamScoresheet(ctx context.Context, matchID, teamID uuid.UUID) (*scoringtypes.Scoresheet, error) {
	sheet := new(Scoresheet)
	err := db.DB.NewSelect().
		Model(sheet).
		Where("match_id = ?", matchID).
		Where("team_id = ?", teamID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScoresheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoresheet for match/team: %w", err)
	}
	return sheet.toDomain(), nil
}

func (db *ScoringDBImpl) ListScoresheets(ctx context.Context, divisionID uuid.UUID) ([]scoringtypes.Scoresheet, error) {
	var models []Scoresheet
	err := db.DB.NewSelect().
		Model(&models).
		Where("division_id = ?", divisionID).
		Order("round ASC", "match_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoresheets: %w", err)
	}
	sheets := make([]scoringtypes.Scoresheet, len(models))
	for i := range models {
		sheets[i] = *models[i].toDomain()
	}
	return sheets, nil
}

func (db *ScoringDBImpl) UpdateScoresheet(ctx context.Context, sheet *scoringtypes.Scoresheet) error {
	model := &Scoresheet{
		ID:     sheet.ID,
		Status: sheet.Status,
		Data: sheetData{
			Missions:        sheet.Missions,
			Score:           sheet.Score,
			MissionErrors:   sheet.MissionErrors,
			ValidatorErrors: sheet.ValidatorErrors,
			GP:              sheet.GP,
		},
	}
	res, err := db.DB.NewUpdate().
		Model(model).
		Column("status", "data").
		Set("updated_at = current_timestamp").
		Where("id = ?", sheet.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update scoresheet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrScoresheetNotFound
	}
	return nil
}
