package judgingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	judgingtypes "github.com/openlems/lems-backend/app/modules/judging/domain/types"
	judgingevents "github.com/openlems/lems-backend/app/modules/judging/events"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// AbortSession terminates a session permanently. Aborted is a terminal
// state: the session signals to the schedule that it must be fully repeated
// later, never resumed. Aborting an already-aborted or completed session is
// rejected.
func (s *JudgingService) AbortSession(ctx context.Context, divisionID, sessionID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "AbortSession", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Aborting judging session",
			slog.String("division_id", divisionID.String()),
			slog.String("session_id", sessionID.String()),
		)

		session, err := s.JudgingDB.GetSession(ctx, sessionID)
		if errors.Is(err, judgingdb.ErrSessionNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find session %s", sessionID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if !session.IsNotStarted() && !session.IsInProgress() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("session %s cannot be aborted from status %s", sessionID, session.Status)), nil
		}

		if err := s.JudgingDB.UpdateSessionStatus(ctx, sessionID, judgingtypes.StatusAborted, session.StartTime); err != nil {
			return results.OperationResult{}, err
		}
		session.Status = judgingtypes.StatusAborted

		payload := judgingevents.SessionPayload{Session: *session}
		s.publishSessionEvent(ctx, judgingevents.SessionAbortedV1, payload,
			eventbus.AudienceJudging, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}

// UpdateSessionFlags records the queueing staff's called/queued flags.
func (s *JudgingService) UpdateSessionFlags(ctx context.Context, divisionID, sessionID uuid.UUID, called, queued bool) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "UpdateSessionFlags", func(ctx context.Context) (results.OperationResult, error) {
		session, err := s.JudgingDB.GetSession(ctx, sessionID)
		if errors.Is(err, judgingdb.ErrSessionNotFound) {
			return results.Reject(results.CodeNotFound, fmt.Sprintf("could not find session %s", sessionID)), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}

		if err := s.JudgingDB.UpdateSessionFlags(ctx, sessionID, called, queued); err != nil {
			return results.OperationResult{}, err
		}
		session.Called = called
		session.Queued = queued

		payload := judgingevents.SessionPayload{Session: *session}
		s.publishSessionEvent(ctx, judgingevents.SessionUpdatedV1, payload,
			eventbus.AudienceJudging, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
