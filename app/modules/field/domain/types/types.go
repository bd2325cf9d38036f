package fieldtypes

import (
	"time"

	"github.com/google/uuid"
)

// MatchLength is the fixed duration of a robot game match.
const MatchLength = 150 * time.Second

// AutoLoadThreshold bounds how far ahead of schedule the next match may be
// auto-loaded after a completion.
const AutoLoadThreshold = 15 * time.Minute

// Stage identifies which part of the tournament a match belongs to.
type Stage string

const (
	StagePractice Stage = "practice"
	StageRanking  Stage = "ranking"
	StageTest     Stage = "test"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Presence records whether a team showed up to its match.
type Presence string

const (
	PresencePresent Presence = "present"
	PresenceNoShow  Presence = "no-show"
	PresenceUnknown Presence = "unknown"
)

// Participant is one table slot in a match. TeamID is nil for an empty slot.
type Participant struct {
	TeamID  *uuid.UUID `json:"team_id"`
	TableID uuid.UUID  `json:"table_id"`
	Present Presence   `json:"present"`
	Queued  bool       `json:"queued"`
}

// Match is one timed robot run on the field.
//
// Invariant: StartTime is set iff Status != not-started.
type Match struct {
	ID            uuid.UUID     `json:"id"`
	DivisionID    uuid.UUID     `json:"division_id"`
	Stage         Stage         `json:"stage"`
	Round         int           `json:"round"`
	Number        int           `json:"number"`
	ScheduledTime time.Time     `json:"scheduled_time"`
	Status        Status        `json:"status"`
	StartTime     *time.Time    `json:"start_time"`
	Called        bool          `json:"called"`
	Participants  []Participant `json:"participants"`
}

func (m *Match) IsNotStarted() bool { return m.Status == StatusNotStarted }
func (m *Match) IsInProgress() bool { return m.Status == StatusInProgress }
func (m *Match) IsCompleted() bool  { return m.Status == StatusCompleted }

// ParticipantByTeam returns the slot holding the given team, or nil.
func (m *Match) ParticipantByTeam(teamID uuid.UUID) *Participant {
	for i := range m.Participants {
		if m.Participants[i].TeamID != nil && *m.Participants[i].TeamID == teamID {
			return &m.Participants[i]
		}
	}
	return nil
}

// TeamAssignment maps a table slot to a team (nil clears the slot).
type TeamAssignment struct {
	TableID uuid.UUID  `json:"table_id"`
	TeamID  *uuid.UUID `json:"team_id"`
}

// AudienceDisplayScreen selects what the audience display is showing.
type AudienceDisplayScreen string

const (
	ScreenScoreboard   AudienceDisplayScreen = "scoreboard"
	ScreenMatchPreview AudienceDisplayScreen = "match-preview"
	ScreenTimer        AudienceDisplayScreen = "timer"
	ScreenBlank        AudienceDisplayScreen = "blank"
)

// IsValid reports whether the screen is one of the known display modes.
func (s AudienceDisplayScreen) IsValid() bool {
	switch s {
	case ScreenScoreboard, ScreenMatchPreview, ScreenTimer, ScreenBlank:
		return true
	}
	return false
}

// DivisionState is the per-division runtime singleton.
//
// Invariant: LoadedMatchID and ActiveMatchID never point at the same match
// except transiently inside the atomic load->start commit, and all writes
// happen inside the serialized command path.
type DivisionState struct {
	DivisionID      uuid.UUID             `json:"division_id"`
	LoadedMatchID   *uuid.UUID            `json:"loaded_match_id"`
	ActiveMatchID   *uuid.UUID            `json:"active_match_id"`
	CurrentStage    Stage                 `json:"current_stage"`
	CurrentSession  int                   `json:"current_session"`
	AudienceDisplay AudienceDisplayScreen `json:"audience_display"`
}

// IsLoaded reports whether the given match is the loaded one.
func (ds *DivisionState) IsLoaded(matchID uuid.UUID) bool {
	return ds.LoadedMatchID != nil && *ds.LoadedMatchID == matchID
}

// IsActive reports whether the given match is the running one.
func (ds *DivisionState) IsActive(matchID uuid.UUID) bool {
	return ds.ActiveMatchID != nil && *ds.ActiveMatchID == matchID
}
