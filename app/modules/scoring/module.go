package scoring

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	scoringservice "github.com/openlems/lems-backend/app/modules/scoring/application"
	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	scoringdb "github.com/openlems/lems-backend/app/modules/scoring/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// Module represents the scoring module.
type Module struct {
	EventBus       eventbus.EventBus
	ScoringService scoringservice.Service
	logger         *slog.Logger
	cancelFunc     context.CancelFunc
}

// NewScoringModule wires the scoring service against the active season
// schema.
func NewScoringModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	scoringDB scoringdb.ScoringDB,
	eventBus eventbus.EventBus,
	schema *scoringtypes.Schema,
) (*Module, error) {
	logger.InfoContext(ctx, "scoring.NewScoringModule called")

	service := scoringservice.NewScoringService(scoringDB, eventBus, logger, tracer, schema)

	return &Module{
		EventBus:       eventBus,
		ScoringService: service,
		logger:         logger,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting scoring module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Scoring module goroutine stopped")
}

func (m *Module) Close() error {
	m.logger.Info("Stopping scoring module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Scoring module stopped")
	return nil
}
