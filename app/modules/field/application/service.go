package fieldservice

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	fieldevents "github.com/openlems/lems-backend/app/modules/field/events"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// FieldService owns the match lifecycle state machine. It is only ever
// invoked from the serialized command path, so no two operations for the
// same division run concurrently.
type FieldService struct {
	FieldDB   fielddb.FieldDB
	EventBus  eventbus.EventBus
	logger    *slog.Logger
	tracer    trace.Tracer
	scheduler CompletionScheduler
	escalator ScoresheetEscalator
}

// NewFieldService creates a new FieldService.
func NewFieldService(db fielddb.FieldDB, bus eventbus.EventBus, logger *slog.Logger, tracer trace.Tracer, scheduler CompletionScheduler, escalator ScoresheetEscalator) Service {
	return &FieldService{
		FieldDB:   db,
		EventBus:  bus,
		logger:    logger,
		tracer:    tracer,
		scheduler: scheduler,
		escalator: escalator,
	}
}

// serviceWrapper handles tracing and panic recovery around an operation.
func (s *FieldService) serviceWrapper(ctx context.Context, operationName string, fn func(ctx context.Context) (results.OperationResult, error)) (result results.OperationResult, err error) {
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

// publishMatchEvent broadcasts one committed match transition to the given
// audiences. Called only after the repository write succeeded.
func (s *FieldService) publishMatchEvent(ctx context.Context, eventType string, payload fieldevents.MatchPayload, audiences ...eventbus.Audience) {
	if err := s.EventBus.Publish(ctx, payload.Match.DivisionID, audiences, eventType, payload); err != nil {
		// The state change is durable; a failed broadcast is resolved by
		// subscribers resyncing from the snapshot boundary.
		s.logger.ErrorContext(ctx, "Failed to broadcast match event",
			slog.String("event_type", eventType),
			slog.String("match_id", payload.Match.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *FieldService) publishMatchUpdated(ctx context.Context, payload fieldevents.MatchUpdatedPayload, audiences ...eventbus.Audience) {
	if err := s.EventBus.Publish(ctx, payload.Match.DivisionID, audiences, fieldevents.MatchUpdatedV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast match update",
			slog.String("match_id", payload.Match.ID.String()),
			slog.Any("error", err),
		)
	}
}
