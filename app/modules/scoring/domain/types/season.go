package scoringtypes

import "strconv"

func boolClause(def bool) ClauseDef {
	return ClauseDef{Type: ClauseBoolean, Default: Boolean(def)}
}

func enumClause(def string, options ...string) ClauseDef {
	return ClauseDef{Type: ClauseEnum, Options: options, Default: Option(def)}
}

func multiEnumClause(def string, options ...string) ClauseDef {
	return ClauseDef{Type: ClauseEnum, Options: options, MultiSelect: true, Default: Option(def)}
}

func asBool(v Value) bool {
	b, _ := v.Bool()
	return b
}

func asInt(v Value) int {
	s, ok := v.Enum()
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// SeasonSchema is the current season's scoresheet definition.
var SeasonSchema = &Schema{
	Version: "2025-11-23",
	Missions: []Mission{
		{
			ID:      "eib",
			Clauses: []ClauseDef{boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[0]) {
					return 20, nil
				}
				return 0, nil
			},
		},
		{
			ID:      "m01",
			Clauses: []ClauseDef{enumClause("0", "0", "1", "2"), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				points := asInt(v[0]) * 10
				if asBool(v[1]) {
					points += 10
				}
				return points, nil
			},
		},
		{
			ID:      "m02",
			Clauses: []ClauseDef{enumClause("0", "0", "1", "2", "3")},
			Calculate: func(v []Value) (int, error) {
				return asInt(v[0]) * 10, nil
			},
		},
		{
			ID:      "m03",
			Clauses: []ClauseDef{boolClause(false), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[1]) {
					if !asBool(v[0]) {
						return 0, Violation("m03-e1")
					}
					return 40, nil
				}
				if asBool(v[0]) {
					return 30, nil
				}
				return 0, nil
			},
		},
		{
			ID:      "m04",
			Clauses: []ClauseDef{boolClause(false), boolClause(true)},
			Calculate: func(v []Value) (int, error) {
				points := 0
				if asBool(v[0]) {
					points += 30
				}
				if asBool(v[1]) {
					points += 10
				}
				return points, nil
			},
		},
		{
			ID:      "m05",
			Clauses: []ClauseDef{boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[0]) {
					return 30, nil
				}
				return 0, nil
			},
		},
		{
			ID:      "m06",
			Clauses: []ClauseDef{enumClause("0", "0", "1", "2", "3")},
			Calculate: func(v []Value) (int, error) {
				return asInt(v[0]) * 10, nil
			},
		},
		{
			ID:      "m07",
			Clauses: []ClauseDef{boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[0]) {
					return 30, nil
				}
				return 0, nil
			},
		},
		{
			ID:      "m08",
			Clauses: []ClauseDef{enumClause("0", "0", "1", "2", "3")},
			Calculate: func(v []Value) (int, error) {
				return asInt(v[0]) * 10, nil
			},
		},
		{
			ID:      "m09",
			Clauses: []ClauseDef{boolClause(false), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				points := 0
				if asBool(v[0]) {
					points += 20
				}
				if asBool(v[1]) {
					points += 10
				}
				return points, nil
			},
		},
		{
			ID:      "m10",
			Clauses: []ClauseDef{boolClause(false), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				points := 0
				if asBool(v[0]) {
					points += 20
				}
				if asBool(v[1]) {
					points += 10
				}
				return points, nil
			},
		},
		{
			ID:      "m11",
			Clauses: []ClauseDef{boolClause(false), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[1]) {
					if !asBool(v[0]) {
						return 0, Violation("m11-e1")
					}
					return 30, nil
				}
				if asBool(v[0]) {
					return 20, nil
				}
				return 0, nil
			},
		},
		{
			ID:      "m12",
			Clauses: []ClauseDef{boolClause(false), boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				points := 0
				if asBool(v[0]) {
					points += 20
				}
				if asBool(v[1]) {
					points += 10
				}
				return points, nil
			},
		},
		{
			ID:      "m13",
			Clauses: []ClauseDef{boolClause(false)},
			Calculate: func(v []Value) (int, error) {
				if asBool(v[0]) {
					return 30, nil
				}
				return 0, nil
			},
		},
		{
			ID: "m14",
			Clauses: []ClauseDef{multiEnumClause("none",
				"none", "brush", "minecart", "scale-pan", "topsoil",
				"ore-with-fossilized-artifact", "precious-artifact", "millstone")},
			Calculate: func(v []Value) (int, error) {
				selected, _ := v[0].EnumList()
				if contains(selected, "none") {
					if len(selected) > 1 {
						return 0, Violation("m14-e1")
					}
					return 0, nil
				}
				return len(selected) * 5, nil
			},
		},
		{
			ID:      "m15",
			Clauses: []ClauseDef{enumClause("0", "0", "1", "2", "3")},
			Calculate: func(v []Value) (int, error) {
				return asInt(v[0]) * 10, nil
			},
		},
		{
			ID:      "pt",
			Clauses: []ClauseDef{enumClause("6", "0", "1", "2", "3", "4", "5", "6")},
			Calculate: func(v []Value) (int, error) {
				switch asInt(v[0]) {
				case 0:
					return 0, nil
				case 1:
					return 10, nil
				case 2:
					return 15, nil
				case 3:
					return 25, nil
				case 4:
					return 35, nil
				default:
					return 50, nil
				}
			},
		},
	},
	Validators: []Validator{
		func(missions map[string][]Value) *RuleViolation {
			if forumHas(missions, "brush") && !asBool(missions["m01"][1]) {
				return Violation("e1")
			}
			return nil
		},
		func(missions map[string][]Value) *RuleViolation {
			if forumHas(missions, "scale-pan") && !asBool(missions["m10"][1]) {
				return Violation("e3")
			}
			return nil
		},
		func(missions map[string][]Value) *RuleViolation {
			if forumHas(missions, "ore-with-fossilized-artifact") && asInt(missions["m06"][0]) == 0 {
				return Violation("e4")
			}
			return nil
		},
		func(missions map[string][]Value) *RuleViolation {
			if forumHas(missions, "millstone") && !asBool(missions["m07"][0]) {
				return Violation("e5")
			}
			return nil
		},
		func(missions map[string][]Value) *RuleViolation {
			if forumHas(missions, "precious-artifact") && !asBool(missions["m04"][0]) {
				return Violation("e6")
			}
			return nil
		},
	},
}

func forumHas(missions map[string][]Value, item string) bool {
	selected, _ := missions["m14"][0].EnumList()
	return contains(selected, item)
}
