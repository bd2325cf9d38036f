package judgingtypes

import "time"

// StageDef is one fixed, time-boxed segment of an in-progress session.
type StageDef struct {
	ID       string
	Duration time.Duration
}

// Stages are the six sequential segments of a judging session. Their
// durations are fixed at design time and sum to SessionLength.
var Stages = []StageDef{
	{ID: "setup", Duration: 2 * time.Minute},
	{ID: "innovation-presentation", Duration: 5 * time.Minute},
	{ID: "innovation-questions", Duration: 5 * time.Minute},
	{ID: "robot-presentation", Duration: 5 * time.Minute},
	{ID: "robot-questions", Duration: 5 * time.Minute},
	{ID: "final-thoughts", Duration: 6 * time.Minute},
}

// SessionLength is the total fixed duration of a judging session.
var SessionLength = func() time.Duration {
	var total time.Duration
	for _, s := range Stages {
		total += s.Duration
	}
	return total
}()

// StageAt derives the current stage purely from elapsed wall-clock time.
// It is never stored, so every observer computes the same stage for the
// same instant, including after a reconnect. Returns the stage index, the
// time remaining in it, and false once the session's total length has
// elapsed (or if it has not started).
func (s *Session) StageAt(now time.Time) (index int, remaining time.Duration, ok bool) {
	if s.StartTime == nil || !s.IsInProgress() {
		return 0, 0, false
	}
	elapsed := now.Sub(*s.StartTime)
	if elapsed < 0 {
		return 0, Stages[0].Duration, true
	}
	var boundary time.Duration
	for i, stage := range Stages {
		boundary += stage.Duration
		if elapsed < boundary {
			return i, boundary - elapsed, true
		}
	}
	return 0, 0, false
}
