package results

// OperationResult carries the outcome of a single serialized command.
// Exactly one of Success or Failure is set. Failure is a rejection payload
// (wrong state for the requested transition, unknown entity, forbidden
// role) and is returned to the caller as data; it never represents an
// infrastructure error. Infrastructure errors travel on the error return
// alongside this struct.
type OperationResult struct {
	Success interface{}
	Failure interface{}
}

// Rejection is the common failure payload for precondition violations.
type Rejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Rejection codes shared across modules.
const (
	CodeNotFound     = "not_found"
	CodeInvalidState = "invalid_state"
	CodeSlotOccupied = "slot_occupied"
	CodeForbidden    = "forbidden"
	CodeRateLimited  = "rate_limited"
)

// Reject builds a failure result with the given code and reason.
func Reject(code, reason string) OperationResult {
	return OperationResult{Failure: &Rejection{Code: code, Reason: reason}}
}

// Succeed builds a success result wrapping the given payload.
func Succeed(payload interface{}) OperationResult {
	return OperationResult{Success: payload}
}
