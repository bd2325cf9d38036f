package fieldqueue

import (
	"github.com/google/uuid"
)

// MatchCompletionJob completes a running match once its duration elapses.
type MatchCompletionJob struct {
	DivisionID uuid.UUID `json:"division_id"`
	MatchID    uuid.UUID `json:"match_id"`
}

// Kind returns the job type identifier for River.
func (MatchCompletionJob) Kind() string { return "match_completion" }
