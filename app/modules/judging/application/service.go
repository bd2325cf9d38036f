package judgingservice

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	judgingevents "github.com/openlems/lems-backend/app/modules/judging/events"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// JudgingService owns the judging session state machine. Like the field
// service it is only invoked from the serialized command path.
type JudgingService struct {
	JudgingDB  judgingdb.JudgingDB
	EventBus   eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	scheduler  CompletionScheduler
	counter    SessionCounter
	assistance *assistanceLimiter
}

// NewJudgingService creates a new JudgingService.
func NewJudgingService(db judgingdb.JudgingDB, bus eventbus.EventBus, logger *slog.Logger, tracer trace.Tracer, scheduler CompletionScheduler, counter SessionCounter) Service {
	return &JudgingService{
		JudgingDB:  db,
		EventBus:   bus,
		logger:     logger,
		tracer:     tracer,
		scheduler:  scheduler,
		counter:    counter,
		assistance: newAssistanceLimiter(),
	}
}

func (s *JudgingService) serviceWrapper(ctx context.Context, operationName string, fn func(ctx context.Context) (results.OperationResult, error)) (result results.OperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Panic in service operation",
				slog.String("operation", operationName),
				slog.Any("panic", r),
			)
			err = fmt.Errorf("panic in %s: %v", operationName, r)
		}
	}()

	return fn(ctx)
}

func (s *JudgingService) publishSessionEvent(ctx context.Context, eventType string, payload judgingevents.SessionPayload, audiences ...eventbus.Audience) {
	if err := s.EventBus.Publish(ctx, payload.Session.DivisionID, audiences, eventType, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast session event",
			slog.String("event_type", eventType),
			slog.String("session_id", payload.Session.ID.String()),
			slog.Any("error", err),
		)
	}
}
