package scoringtypes

import (
	"time"

	"github.com/google/uuid"
)

// SheetStatus is the workflow state of a scoresheet.
type SheetStatus string

const (
	SheetNotStarted     SheetStatus = "not-started"
	SheetInProgress     SheetStatus = "in-progress"
	SheetCompleted      SheetStatus = "completed"
	SheetWaitingHeadRef SheetStatus = "waiting-for-head-ref"
)

// Scoresheet records the clause inputs and the computed score for one
// team's match.
//
// Invariant: Score, MissionErrors, and ValidatorErrors are always the pure
// function of Missions under the season schema. They are recomputed on
// every write and never hand-edited.
type Scoresheet struct {
	ID         uuid.UUID `json:"id"`
	DivisionID uuid.UUID `json:"division_id"`
	MatchID    uuid.UUID `json:"match_id"`
	TeamID     uuid.UUID `json:"team_id"`
	Stage      string    `json:"stage"`
	Round      int       `json:"round"`

	Status          SheetStatus        `json:"status"`
	Missions        map[string][]Value `json:"missions"`
	Score           int                `json:"score"`
	MissionErrors   []MissionError     `json:"mission_errors"`
	ValidatorErrors []string           `json:"validator_errors"`
	// GP is the optional gracious-professionalism rating given by the
	// referee alongside the score.
	GP *int `json:"gp,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Scoresheet) IsCompleted() bool { return s.Status == SheetCompleted }
func (s *Scoresheet) IsWaiting() bool   { return s.Status == SheetWaitingHeadRef }

// HasErrors reports whether any mission or validator error remains.
func (s *Scoresheet) HasErrors() bool {
	return len(s.MissionErrors) > 0 || len(s.ValidatorErrors) > 0
}
