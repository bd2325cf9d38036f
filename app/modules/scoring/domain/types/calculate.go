package scoringtypes

import "errors"

// MissionError is a rule violation attached to a single mission.
type MissionError struct {
	MissionID string `json:"mission_id"`
	Code      string `json:"code"`
}

// Result is the official scoring outcome for one sheet of clause values.
type Result struct {
	Score           int            `json:"score"`
	MissionErrors   []MissionError `json:"mission_errors"`
	ValidatorErrors []string       `json:"validator_errors"`
}

// Calculate turns raw clause values into an official score.
//
// Each mission's calculation runs independently: a rule violation attaches
// to that mission only and excludes its contribution from the total, so one
// bad clause combination never blocks scoring of the rest of the sheet.
// Validators then run against the full mission map and collect separately.
//
// Deterministic: identical clause values always yield an identical Result.
// Missing or malformed mission values degrade to the mission's defaults.
func (s *Schema) Calculate(missions map[string][]Value) Result {
	result := Result{
		MissionErrors:   []MissionError{},
		ValidatorErrors: []string{},
	}

	normalized := make(map[string][]Value, len(s.Missions))
	for _, mission := range s.Missions {
		normalized[mission.ID] = s.normalizedValues(mission, missions[mission.ID])
	}

	for _, mission := range s.Missions {
		contribution, err := mission.Calculate(normalized[mission.ID])
		if err != nil {
			var violation *RuleViolation
			if !errors.As(err, &violation) {
				violation = Violation(mission.ID + "-invalid")
			}
			result.MissionErrors = append(result.MissionErrors, MissionError{
				MissionID: mission.ID,
				Code:      violation.ID,
			})
			// An errored mission contributes zero to the total.
			continue
		}
		result.Score += contribution
	}

	for _, validate := range s.Validators {
		if violation := validate(normalized); violation != nil {
			result.ValidatorErrors = append(result.ValidatorErrors, violation.ID)
		}
	}

	return result
}

// normalizedValues pads, truncates, and type-checks raw values against the
// mission's clause layout, substituting the clause default for anything
// that does not fit.
func (s *Schema) normalizedValues(mission Mission, raw []Value) []Value {
	values := make([]Value, len(mission.Clauses))
	for i, def := range mission.Clauses {
		if i < len(raw) && def.Matches(raw[i]) {
			values[i] = raw[i]
		} else {
			values[i] = def.Default
		}
	}
	return values
}
