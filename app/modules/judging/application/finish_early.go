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

// FinishSessionEarly completes a running session before its timer expires.
// This is the legitimate early conclusion of a session, distinct from abort.
func (s *JudgingService) FinishSessionEarly(ctx context.Context, divisionID, sessionID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "FinishSessionEarly", func(ctx context.Context) (results.OperationResult, error) {
		s.logger.InfoContext(ctx, "Finishing judging session early",
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

		if !session.IsInProgress() {
			return results.Reject(results.CodeInvalidState, fmt.Sprintf("session %s is not in progress", sessionID)), nil
		}

		if err := s.JudgingDB.UpdateSessionStatus(ctx, sessionID, judgingtypes.StatusCompleted, session.StartTime); err != nil {
			return results.OperationResult{}, err
		}
		session.Status = judgingtypes.StatusCompleted

		payload := judgingevents.SessionPayload{Session: *session}
		s.publishSessionEvent(ctx, judgingevents.SessionCompletedV1, payload,
			eventbus.AudienceJudging, eventbus.AudiencePitAdmin)

		return results.Succeed(&payload), nil
	})
}
