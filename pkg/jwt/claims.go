package jwt

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims identify one operator terminal for the duration of an
// event: which division it works and in what role.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Division string `json:"division"`
	Role     string `json:"role"`
}

// Role is the operator's function at the event. Roles scope which commands
// a terminal may issue; only the head referee may resolve an escalated
// scoresheet.
type Role string

const (
	RoleReferee         Role = "referee"
	RoleHeadReferee     Role = "head-referee"
	RoleJudge           Role = "judge"
	RoleJudgeAdvisor    Role = "judge-advisor"
	RoleQueuer          Role = "queuer"
	RolePitAdmin        Role = "pit-admin"
	RoleScorekeeper     Role = "scorekeeper"
	RoleAudienceDisplay Role = "audience-display"
)
