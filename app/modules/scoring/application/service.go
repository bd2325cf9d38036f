package scoringservice

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	scoringevents "github.com/openlems/lems-backend/app/modules/scoring/events"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/app/shared/results"
)

// ScoringService owns the scoresheet workflow. Score and error fields on a
// sheet are always derived from its clause values through the season
// schema; no operation writes them directly.
type ScoringService struct {
	ScoringDB scoringdb.ScoringDB
	EventBus  eventbus.EventBus
	logger    *slog.Logger
	tracer    trace.Tracer
	schema    *scoringtypes.Schema
}

// NewScoringService creates a new ScoringService bound to the given schema.
func NewScoringService(db scoringdb.ScoringDB, bus eventbus.EventBus, logger *slog.Logger, tracer trace.Tracer, schema *scoringtypes.Schema) Service {
	return &ScoringService{
		ScoringDB: db,
		EventBus:  bus,
		logger:    logger,
		tracer:    tracer,
		schema:    schema,
	}
}

// serviceWrapper handles tracing and panic recovery around an operation.
func (s *ScoringService) serviceWrapper(ctx context.Context, operationName string, fn func(ctx context.Context) (results.OperationResult, error)) (result results.OperationResult, err error) {
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

// recompute refreshes the sheet's derived fields from its clause values.
func (s *ScoringService) recompute(sheet *scoringtypes.Scoresheet) {
	res := s.schema.Calculate(sheet.Missions)
	sheet.Score = res.Score
	sheet.MissionErrors = res.MissionErrors
	sheet.ValidatorErrors = res.ValidatorErrors
}

// publishScoresheetEvent broadcasts one committed scoresheet transition.
// Called only after the repository write succeeded.
func (s *ScoringService) publishScoresheetEvent(ctx context.Context, eventType string, payload scoringevents.ScoresheetPayload, audiences ...eventbus.Audience) {
	if err := s.EventBus.Publish(ctx, payload.Scoresheet.DivisionID, audiences, eventType, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast scoresheet event",
			slog.String("event_type", eventType),
			slog.String("scoresheet_id", payload.Scoresheet.ID.String()),
			slog.Any("error", err),
		)
	}
}
