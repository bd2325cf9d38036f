package judgingservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openlems/lems-backend/app/shared/results"
)

// Service is the judging session state machine plus the notification-only
// assistance channel.
type Service interface {
	StartSession(ctx context.Context, divisionID, roomID, sessionID uuid.UUID) (results.OperationResult, error)
	FinishSessionEarly(ctx context.Context, divisionID, sessionID uuid.UUID) (results.OperationResult, error)
	CompleteSession(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt time.Time) (results.OperationResult, error)
	AbortSession(ctx context.Context, divisionID, sessionID uuid.UUID) (results.OperationResult, error)
	RequestAssistance(ctx context.Context, divisionID, roomID uuid.UUID) (results.OperationResult, error)
	UpdateSessionFlags(ctx context.Context, divisionID, sessionID uuid.UUID, called, queued bool) (results.OperationResult, error)
}

// CompletionScheduler schedules the time-driven completion of a session.
type CompletionScheduler interface {
	ScheduleSessionCompletion(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt time.Time, at time.Time) error
}

// SessionCounter advances the division-wide current session number when a
// later session starts. Implemented over the division runtime state.
type SessionCounter interface {
	BumpCurrentSession(ctx context.Context, divisionID uuid.UUID, number int) (*int, error)
}
