package fieldservice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompletionScheduler schedules the time-driven completion of a running
// match. Implemented by the river-backed queue service.
type CompletionScheduler interface {
	ScheduleMatchCompletion(ctx context.Context, divisionID, matchID uuid.UUID, at time.Time) error
	CancelMatchCompletion(ctx context.Context, matchID uuid.UUID) error
}

// ScoresheetEscalator routes a team's scoresheet to head-referee review
// when a no-show is recorded after the match already completed. Implemented
// by the scoring module.
type ScoresheetEscalator interface {
	EscalateNoShow(ctx context.Context, divisionID, matchID, teamID uuid.UUID) error
}
