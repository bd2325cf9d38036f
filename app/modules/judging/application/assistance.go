package judgingservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	judgingevents "github.com/openlems/lems-backend/app/modules/judging/events"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// AssistanceCooldown is the minimum interval between assistance requests
// from the same room.
const AssistanceCooldown = 30 * time.Second

// assistanceLimiter keeps one rate limiter per room.
type assistanceLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
}

func newAssistanceLimiter() *assistanceLimiter {
	return &assistanceLimiter{limiters: make(map[uuid.UUID]*rate.Limiter)}
}

func (a *assistanceLimiter) allow(roomID uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	limiter, ok := a.limiters[roomID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(AssistanceCooldown), 1)
		a.limiters[roomID] = limiter
	}
	return limiter.Allow()
}

// RequestAssistance notifies judging staff that a room needs help. It is a
// notification-only side channel: no state transition happens and repeated
// triggers within the cooldown window are rejected at the source.
func (s *JudgingService) RequestAssistance(ctx context.Context, divisionID, roomID uuid.UUID) (results.OperationResult, error) {
	return s.serviceWrapper(ctx, "RequestAssistance", func(ctx context.Context) (results.OperationResult, error) {
		if !s.assistance.allow(roomID) {
			return results.Reject(results.CodeRateLimited,
				fmt.Sprintf("assistance for room %s was already requested recently", roomID)), nil
		}

		payload := judgingevents.AssistancePayload{
			DivisionID:  divisionID,
			RoomID:      roomID,
			RequestedAt: time.Now(),
		}

		s.logger.InfoContext(ctx, "Assistance requested",
			slog.String("division_id", divisionID.String()),
			slog.String("room_id", roomID.String()),
		)

		if err := s.EventBus.Publish(ctx, divisionID,
			[]eventbus.Audience{eventbus.AudienceJudging, eventbus.AudiencePitAdmin},
			judgingevents.AssistanceRequestedV1, payload); err != nil {
			return results.OperationResult{}, fmt.Errorf("failed to broadcast assistance request: %w", err)
		}

		return results.Succeed(&payload), nil
	})
}
