package judgingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
	judgingevents "github.com/openlems/lems-backend/app/modules/judging/events"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// StartSession begins a judging session. A room runs at most one session at
// a time. Completion is scheduled for SessionLength from now; the current
// stage is derived from the start time, never stored.
func (s *JudgingService) StartSession(ctx context.Context, divisionID, roomID, sessionID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "StartSession", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Starting judging session",
			slog.String("division_id", divisionID.String()),
			slog.String("room_id", roomID.String()),
			slog.String("session_id", sessionID.String()),
		)

		session, err := s.JudgingDB.GetSession(ctx, sessionID)
		if errors.Is(err, judgingdb.ErrSessionNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find session %s in room %s", sessionID, roomID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if session.RoomID != roomID {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("session %s does not belong to room %s", sessionID, roomID)), nil
		}
		if !session.IsNotStarted() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("session %s has already started", sessionID)), nil
		}

		roomSessions, err := s.JudgingDB.ListRoomSessions(ctx, roomID)
		if err != nil {
			return results.OperationResult{}, err
		}
		for _, other := range roomSessions {
			if other.IsInProgress() {
				return results.Reject(results.CodeSlotOccupied, fmt.Sprintf("room %s already has a running session", roomID)), nil
			}
		}

		startTime := time.Now()
		if err := s.JudgingDB.UpdateSessionStatus(ctx, sessionID, judgingtypes.StatusInProgress, &startTime); err != nil {
			return results.OperationResult{}, err
		}

		currentSession, err := s.counter.BumpCurrentSession(ctx, divisionID, session.Number)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to advance current session counter",
				slog.String("division_id", divisionID.String()),
				slog.Any("error", err),
			)
		}

		if err := s.scheduler.ScheduleSessionCompletion(ctx, divisionID, sessionID, startTime, startTime.Add(judgingtypes.SessionLength)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to schedule session completion",
				slog.String("session_id", sessionID.String()),
				slog.Any("error", err),
			)
		}

		session.Status = judgingtypes.StatusInProgress
		session.StartTime = &startTime

		payload := judgingevents.SessionPayload{Session: *session, CurrentSession: currentSession}
		s.publishSessionEvent(ctx, judgingevents.SessionStartedV1, payload,
			eventbus.AudienceJudging, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// CompleteSession finishes a session whose timer elapsed. Driven by the
// scheduled completion job; it only applies if the session is still
// in-progress with the same start time (an abort+restart in between
// invalidates the stale job).
func (s *JudgingService) CompleteSession(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt time.Time) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "CompleteSession", func(ctx context.Context) (results.OperationResult, error) {
		session, err := s.JudgingDB.GetSession(ctx, sessionID)
		if errors.Is(err, judgingdb.ErrSessionNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find session %s", sessionID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if !session.IsInProgress() || session.StartTime == nil || !session.StartTime.Equal(startedAt) {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("session %s is not running the timed slot that expired", sessionID)), nil
		}

		if err := s.JudgingDB.UpdateSessionStatus(ctx, sessionID, judgingtypes.StatusCompleted, session.StartTime); err != nil {
			return results.OperationResult{}, err
		}
		session.Status = judgingtypes.StatusCompleted

		s.logger.InfoContext(ctx, "Judging session completed",
			slog.String("session_id", sessionID.String()),
		)

		payload := judgingevents.SessionPayload{Session: *session}
		s.publishSessionEvent(ctx, judgingevents.SessionCompletedV1, payload,
			eventbus.AudienceJudging, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
