package judging

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	judgingservice "github.com/openlems/lems-backend/app/modules/judging/application"
	judgingqueue "github.com/openlems/lems-backend/app/modules/judging/infrastructure/queue"
	judgingdb "github.com/openlems/lems-backend/app/modules/judging/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// Module represents the judging module.
type Module struct {
	EventBus       eventbus.EventBus
	JudgingService judgingservice.Service
	Queue          *judgingqueue.Service
	logger         *slog.Logger
	cancelFunc     context.CancelFunc
}

// NewJudgingModule wires the judging service. The session counter crosses
// into the field module's division state, which owns the running session
// number shown on displays.
func NewJudgingModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	judgingDB judgingdb.JudgingDB,
	eventBus eventbus.EventBus,
	queue *judgingqueue.Service,
	counter judgingservice.SessionCounter,
) (*Module, error) {
	logger.InfoContext(ctx, "judging.NewJudgingModule called")

	judgingService := judgingservice.NewJudgingService(judgingDB, eventBus, logger, tracer, queue, counter)
	queue.BindCompleter(judgingService)

	return &Module{
		EventBus:       eventBus,
		JudgingService: judgingService,
		Queue:          queue,
		logger:         logger,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting judging module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Judging module goroutine stopped")
}

func (m *Module) Close() error {
	m.logger.Info("Stopping judging module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Judging module stopped")
	return nil
}
