package judgingevents

import (
	"time"

	"github.com/google/uuid"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
)

const (
	SessionStartedV1      = "session.started.v1"
	SessionCompletedV1    = "session.completed.v1"
	SessionAbortedV1      = "session.aborted.v1"
	SessionUpdatedV1      = "session.updated.v1"
	AssistanceRequestedV1 = "assistance.requested.v1"
)

// SessionPayload accompanies every session lifecycle event.
type SessionPayload struct {
	Session judgingtypes.Session `json:"session"`
	// CurrentSession is the division-wide session counter, included when
	// the transition advanced it.
	CurrentSession *int `json:"current_session,omitempty"`
}

// AssistancePayload is notification-only; it carries no state transition.
type AssistancePayload struct {
	DivisionID  uuid.UUID `json:"division_id"`
	RoomID      uuid.UUID `json:"room_id"`
	RequestedAt time.Time `json:"requested_at"`
}
