package scoringtypes

import (
	"encoding/json"
	"fmt"
)

// ClauseType discriminates the clause value variants.
type ClauseType string

const (
	ClauseBoolean ClauseType = "boolean"
	ClauseEnum    ClauseType = "enum"
	ClauseNumber  ClauseType = "number"
)

// ClauseDef describes one scorable sub-decision of a mission.
type ClauseDef struct {
	Type        ClauseType `json:"type"`
	Options     []string   `json:"options,omitempty"`
	MultiSelect bool       `json:"multi_select,omitempty"`
	Min         int        `json:"min,omitempty"`
	Max         int        `json:"max,omitempty"`
	Default     Value      `json:"default"`
}

// Value is the tagged variant holding one clause's current value: a
// boolean, a single enum option, a multi-select option list, or a bounded
// integer. The zero Value is an unset boolean false.
type Value struct {
	kind    ClauseType
	boolVal bool
	strVal  string
	listVal []string
	numVal  int
}

func Boolean(v bool) Value { return Value{kind: ClauseBoolean, boolVal: v} }
func Option(v string) Value { return Value{kind: ClauseEnum, strVal: v} }
func Options(v ...string) Value { return Value{kind: ClauseEnum, listVal: v, strVal: ""} }
func Number(v int) Value { return Value{kind: ClauseNumber, numVal: v} }

// Bool returns the boolean value; ok is false for non-boolean variants.
func (v Value) Bool() (value, ok bool) {
	return v.boolVal, v.kind == ClauseBoolean
}

// Enum returns the single selected option.
func (v Value) Enum() (string, bool) {
	if v.kind != ClauseEnum || v.listVal != nil {
		return "", false
	}
	return v.strVal, true
}

// EnumList returns the selected options. A single-select value is returned
// as a one-element list, mirroring how multi-select clauses degrade.
func (v Value) EnumList() ([]string, bool) {
	if v.kind != ClauseEnum {
		return nil, false
	}
	if v.listVal != nil {
		return v.listVal, true
	}
	return []string{v.strVal}, true
}

// Int returns the numeric value.
func (v Value) Int() (int, bool) {
	return v.numVal, v.kind == ClauseNumber
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ClauseBoolean:
		return json.Marshal(v.boolVal)
	case ClauseEnum:
		if v.listVal != nil {
			return json.Marshal(v.listVal)
		}
		return json.Marshal(v.strVal)
	case ClauseNumber:
		return json.Marshal(v.numVal)
	}
	return json.Marshal(false)
}

// UnmarshalJSON infers the variant from the JSON token type: booleans,
// strings, string arrays, and integers are all self-describing.
func (v *Value) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Boolean(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Option(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = Options(list...)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	return fmt.Errorf("clause value %s is not a boolean, option, option list, or integer", data)
}

// Matches reports whether the value fits the clause definition.
func (d ClauseDef) Matches(v Value) bool {
	switch d.Type {
	case ClauseBoolean:
		_, ok := v.Bool()
		return ok
	case ClauseEnum:
		selected, ok := v.EnumList()
		if !ok {
			return false
		}
		if !d.MultiSelect && len(selected) > 1 {
			return false
		}
		for _, s := range selected {
			if !d.hasOption(s) {
				return false
			}
		}
		return true
	case ClauseNumber:
		n, ok := v.Int()
		return ok && n >= d.Min && n <= d.Max
	}
	return false
}

func (d ClauseDef) hasOption(s string) bool {
	for _, o := range d.Options {
		if o == s {
			return true
		}
	}
	return false
}

// RuleViolation is a named scoring rule violation raised by a mission
// calculation or a whole-sheet validator. The ID is stable across
// recomputations for dispute resolution.
type RuleViolation struct {
	ID string
}

func (e *RuleViolation) Error() string { return "rule violation: " + e.ID }

// Violation builds a RuleViolation with the given stable id.
func Violation(id string) *RuleViolation { return &RuleViolation{ID: id} }

// Mission is one scorable mission: its clause layout and the pure
// calculation mapping clause values to a point contribution. Calculations
// return a *RuleViolation error for named rule violations and must perform
// no I/O.
type Mission struct {
	ID        string
	Clauses   []ClauseDef
	Calculate func(values []Value) (int, error)
}

// Defaults returns the mission's default clause values.
func (m Mission) Defaults() []Value {
	values := make([]Value, len(m.Clauses))
	for i, c := range m.Clauses {
		values[i] = c.Default
	}
	return values
}

// Validator is a cross-mission consistency check over the full sheet.
// It returns a *RuleViolation when the sheet is inconsistent.
type Validator func(missions map[string][]Value) *RuleViolation

// Schema is one season's complete scoresheet definition.
type Schema struct {
	Version    string
	Missions   []Mission
	Validators []Validator
}

// MissionByID returns the mission definition, or nil for unknown ids.
func (s *Schema) MissionByID(id string) *Mission {
	for i := range s.Missions {
		if s.Missions[i].ID == id {
			return &s.Missions[i]
		}
	}
	return nil
}

// DefaultMissions returns a full mission map populated with defaults.
func (s *Schema) DefaultMissions() map[string][]Value {
	missions := make(map[string][]Value, len(s.Missions))
	for _, m := range s.Missions {
		missions[m.ID] = m.Defaults()
	}
	return missions
}
