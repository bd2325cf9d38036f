package field

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	fieldservice "github.com/openlems/lems-backend/app/modules/field/application"
	fieldqueue "github.com/openlems/lems-backend/app/modules/field/infrastructure/queue"
	fielddb "github.com/openlems/lems-backend/app/modules/field/infrastructure/repositories"
	"github.com/openlems/lems-backend/app/shared/eventbus"
)

// Module represents the field module.
type Module struct {
	EventBus     eventbus.EventBus
	FieldService fieldservice.Service
	Queue        *fieldqueue.Service
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
}

// NewFieldModule wires the field service to its repository, queue, and
// broadcast dependencies. The queue service is bound back to the service so
// timed completions run the same code path as operator commands.
func NewFieldModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	fieldDB fielddb.FieldDB,
	eventBus eventbus.EventBus,
	queue *fieldqueue.Service,
	escalator fieldservice.ScoresheetEscalator,
) (*Module, error) {
	logger.InfoContext(ctx, "field.NewFieldModule called")

	fieldService := fieldservice.NewFieldService(fieldDB, eventBus, logger, tracer, queue, escalator)
	queue.BindCompleter(fieldService)

	return &Module{
		EventBus:     eventBus,
		FieldService: fieldService,
		Queue:        queue,
		logger:       logger,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting field module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Field module goroutine stopped")
}

func (m *Module) Close() error {
	m.logger.Info("Stopping field module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Field module stopped")
	return nil
}
