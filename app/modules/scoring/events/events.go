package scoringevents

import (
	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
)

const (
	ScoresheetUpdatedV1   = "scoresheet.updated.v1"
	ScoresheetEscalatedV1 = "scoresheet.escalated.v1"
	ScoresheetResolvedV1  = "scoresheet.resolved.v1"
)

// ScoresheetPayload accompanies every scoresheet event. The sheet always
// carries its freshly recomputed score and errors.
type ScoresheetPayload struct {
	Scoresheet scoringtypes.Scoresheet `json:"scoresheet"`
	Reason     string                  `json:"reason,omitempty"`
}
