package judgingtypes

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a judging session. Aborted is terminal:
// an aborted session is rescheduled externally, never resumed.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

// Session is one timed interview slot for a team in a judging room.
type Session struct {
	ID            uuid.UUID  `json:"id"`
	DivisionID    uuid.UUID  `json:"division_id"`
	RoomID        uuid.UUID  `json:"room_id"`
	TeamID        uuid.UUID  `json:"team_id"`
	Number        int        `json:"number"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        Status     `json:"status"`
	StartTime     *time.Time `json:"start_time"`
	Called        bool       `json:"called"`
	Queued        bool       `json:"queued"`
}

func (s *Session) IsNotStarted() bool { return s.Status == StatusNotStarted }
func (s *Session) IsInProgress() bool { return s.Status == StatusInProgress }
func (s *Session) IsAborted() bool    { return s.Status == StatusAborted }
