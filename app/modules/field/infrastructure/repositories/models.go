package fielddb

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrDivisionStateNotFound = errors.New("division state not found")
)

// Match is the bun model for the matches table.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID            uuid.UUID                `bun:"id,pk,type:uuid"`
	DivisionID    uuid.UUID                `bun:"division_id,notnull,type:uuid"`
	Stage         fieldtypes.Stage         `bun:"stage,notnull"`
	Round         int                      `bun:"round,notnull"`
	Number        int                      `bun:"number,notnull"`
	ScheduledTime time.Time                `bun:"scheduled_time,notnull"`
	Status        fieldtypes.Status        `bun:"status,notnull"`
	StartTime     *time.Time               `bun:"start_time,nullzero"`
	Called        bool                     `bun:"called,notnull,default:false"`
	Participants  []fieldtypes.Participant `bun:"participants,type:jsonb"`
	UpdatedAt     time.Time                `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (m *Match) toDomain() *fieldtypes.Match {
	return &fieldtypes.Match{
		ID:            m.ID,
		DivisionID:    m.DivisionID,
		Stage:         m.Stage,
		Round:         m.Round,
		Number:        m.Number,
		ScheduledTime: m.ScheduledTime,
		Status:        m.Status,
		StartTime:     m.StartTime,
		Called:        m.Called,
		Participants:  m.Participants,
	}
}

// DivisionState is the bun model for the division_states table.
type DivisionState struct {
	bun.BaseModel `bun:"table:division_states,alias:ds"`

	DivisionID      uuid.UUID                        `bun:"division_id,pk,type:uuid"`
	LoadedMatchID   *uuid.UUID                       `bun:"loaded_match_id,nullzero,type:uuid"`
	ActiveMatchID   *uuid.UUID                       `bun:"active_match_id,nullzero,type:uuid"`
	CurrentStage    fieldtypes.Stage                 `bun:"current_stage,notnull"`
	CurrentSession  int                              `bun:"current_session,notnull,default:0"`
	AudienceDisplay fieldtypes.AudienceDisplayScreen `bun:"audience_display,notnull,default:'scoreboard'"`
	UpdatedAt       time.Time                        `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (ds *DivisionState) toDomain() *fieldtypes.DivisionState {
	return &fieldtypes.DivisionState{
		DivisionID:      ds.DivisionID,
		LoadedMatchID:   ds.LoadedMatchID,
		ActiveMatchID:   ds.ActiveMatchID,
		CurrentStage:    ds.CurrentStage,
		CurrentSession:  ds.CurrentSession,
		AudienceDisplay: ds.AudienceDisplay,
	}
}
