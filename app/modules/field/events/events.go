package fieldevents

import (
	fieldtypes "github.com/openlems/lems-backend/app/modules/field/domain/types"
)

// Event types carried on the field channels. One event per committed state
// transition; subscribers apply them in commit order on top of a snapshot.
const (
	MatchLoadedV1            = "match.loaded.v1"
	MatchStartedV1           = "match.started.v1"
	MatchCompletedV1         = "match.completed.v1"
	MatchAbortedV1           = "match.aborted.v1"
	MatchUpdatedV1           = "match.updated.v1"
	AudienceDisplayUpdatedV1 = "audience-display.updated.v1"
)

// MatchPayload accompanies every match lifecycle event. DivisionState is
// included whenever the transition touched the runtime pointers.
type MatchPayload struct {
	Match         fieldtypes.Match          `json:"match"`
	DivisionState *fieldtypes.DivisionState `json:"division_state,omitempty"`
}

// MatchUpdatedPayload accompanies edits that do not change lifecycle state
// (presence, queue flags, team assignments, called).
type MatchUpdatedPayload struct {
	Match    fieldtypes.Match `json:"match"`
	Warnings []string         `json:"warnings,omitempty"`
}

// AudienceDisplayPayload accompanies audience-display screen switches.
type AudienceDisplayPayload struct {
	DivisionState *fieldtypes.DivisionState `json:"division_state"`
}
