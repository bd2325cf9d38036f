package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.opentelemetry.io/otel"

	"github.com/openlems/lems-backend/api"
	"github.com/openlems/lems-backend/api/handlers"
	"github.com/openlems/lems-backend/app/modules/field"
	fieldqueue "github.com/openlems/lems-backend/app/modules/field/infrastructure/queue"
	"github.com/openlems/lems-backend/app/modules/judging"
	judgingqueue "github.com/openlems/lems-backend/app/modules/judging/infrastructure/queue"
	"github.com/openlems/lems-backend/app/modules/scoring"
	scoringtypes "github.com/openlems/lems-backend/app/modules/scoring/domain/types"
	"github.com/openlems/lems-backend/app/shared/eventbus"
	"github.com/openlems/lems-backend/config"
	"github.com/openlems/lems-backend/db/bundb"
	"github.com/openlems/lems-backend/internal/commandbus"
	"github.com/openlems/lems-backend/pkg/jwt"
)

// App assembles the whole tournament backend: record store, event bus,
// command serializer, the three domain modules, the river queue, and the
// HTTP boundary.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Dispatcher    *commandbus.Dispatcher
	FieldModule   *field.Module
	JudgingModule *judging.Module
	ScoringModule *scoring.Module
	Server        *api.Server

	pool          *pgxpool.Pool
	riverClient   *river.Client[pgx.Tx]
	metricsServer *http.Server
}

// NewApp wires every component. Nothing is started yet; call Run.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracer := otel.Tracer("lems-backend")

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	registry := prometheus.NewRegistry()
	dispatcher := commandbus.NewDispatcher(logger, commandbus.NewMetrics(registry))

	// Queue services exist before the river client so their workers can be
	// registered with it.
	fieldQueue := fieldqueue.NewService(logger, dispatcher)
	judgingQueue := judgingqueue.NewService(logger, dispatcher)

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, fieldQueue.Worker())
	river.AddWorker(workers, judgingQueue.Worker())

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			"field":   {MaxWorkers: 5},
			"judging": {MaxWorkers: 5},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create river client: %w", err)
	}
	fieldQueue.BindClient(riverClient)
	judgingQueue.BindClient(riverClient)

	scoringModule, err := scoring.NewScoringModule(ctx, logger, tracer, dbService.ScoringDB, eventBus, scoringtypes.SeasonSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring module: %w", err)
	}

	fieldModule, err := field.NewFieldModule(ctx, logger, tracer, dbService.FieldDB, eventBus, fieldQueue, scoringModule.ScoringService)
	if err != nil {
		return nil, fmt.Errorf("failed to create field module: %w", err)
	}

	sessionCounter := &divisionSessionCounter{fieldDB: dbService.FieldDB}
	judgingModule, err := judging.NewJudgingModule(ctx, logger, tracer, dbService.JudgingDB, eventBus, judgingQueue, sessionCounter)
	if err != nil {
		return nil, fmt.Errorf("failed to create judging module: %w", err)
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.BaseURL)

	server := api.NewServer(
		cfg.HTTP.ListenAddress,
		jwtService,
		handlers.NewFieldHandler(dispatcher, fieldModule.FieldService, logger),
		handlers.NewJudgingHandler(dispatcher, judgingModule.JudgingService, logger),
		handlers.NewScoringHandler(dispatcher, scoringModule.ScoringService, logger),
		handlers.NewSnapshotHandler(dbService.FieldDB, dbService.JudgingDB, dbService.ScoringDB, logger),
		logger,
	)

	app := &App{
		Config:        cfg,
		Logger:        logger,
		DB:            dbService,
		EventBus:      eventBus,
		Dispatcher:    dispatcher,
		FieldModule:   fieldModule,
		JudgingModule: judgingModule,
		ScoringModule: scoringModule,
		Server:        server,
		pool:          pool,
		riverClient:   riverClient,
	}

	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return app, nil
}

// Run starts the river client, the module goroutines, the metrics listener,
// and the API server. It blocks until the API listener fails or the context
// is canceled.
func (app *App) Run(ctx context.Context) error {
	if err := app.riverClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start river client: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go app.FieldModule.Run(ctx, &wg)
	go app.JudgingModule.Run(ctx, &wg)
	go app.ScoringModule.Run(ctx, &wg)

	if app.metricsServer != nil {
		go func() {
			if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.Logger.Error("Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- app.Server.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	wg.Wait()
	return nil
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close(ctx context.Context) error {
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Logger.Error("Failed to shut down API server", slog.Any("error", err))
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			app.Logger.Error("Failed to shut down metrics server", slog.Any("error", err))
		}
	}

	if err := app.riverClient.Stop(ctx); err != nil {
		app.Logger.Error("Failed to stop river client", slog.Any("error", err))
	}

	_ = app.FieldModule.Close()
	_ = app.JudgingModule.Close()
	_ = app.ScoringModule.Close()

	app.Dispatcher.Close()

	if err := app.EventBus.Close(); err != nil {
		app.Logger.Error("Failed to close event bus", slog.Any("error", err))
	}

	app.pool.Close()
	if err := app.DB.GetDB().Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	return nil
}
