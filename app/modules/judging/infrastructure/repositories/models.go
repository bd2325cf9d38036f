package judgingdb

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
)

var ErrSessionNotFound = errors.New("judging session not found")

// Session is the bun model for the judging_sessions table.
type Session struct {
	bun.BaseModel `bun:"table:judging_sessions,alias:js"`

	ID            uuid.UUID           `bun:"id,pk,type:uuid"`
	DivisionID    uuid.UUID           `bun:"division_id,notnull,type:uuid"`
	RoomID        uuid.UUID           `bun:"room_id,notnull,type:uuid"`
	TeamID        uuid.UUID           `bun:"team_id,notnull,type:uuid"`
	Number        int                 `bun:"number,notnull"`
	ScheduledTime time.Time           `bun:"scheduled_time,notnull"`
	Status        judgingtypes.Status `bun:"status,notnull"`
	StartTime     *time.Time          `bun:"start_time,nullzero"`
	Called        bool                `bun:"called,notnull,default:false"`
	Queued        bool                `bun:"queued,notnull,default:false"`
	UpdatedAt     time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (s *Session) toDomain() *judgingtypes.Session {
	return &judgingtypes.Session{
		ID:            s.ID,
		DivisionID:    s.DivisionID,
		RoomID:        s.RoomID,
		TeamID:        s.TeamID,
		Number:        s.Number,
		ScheduledTime: s.ScheduledTime,
		Status:        s.Status,
		StartTime:     s.StartTime,
		Called:        s.Called,
		Queued:        s.Queued,
	}
}
