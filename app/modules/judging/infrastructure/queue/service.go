package judgingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	judgingservice "github.com/openlems/lems-backend/app/modules/judging/application"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/internal/commandbus"
)

// SessionCompletionJob completes a judging session once its fixed length
// elapses. StartedAt pins the job to one run of the session: a stale job
// left over from an aborted run is rejected by the state machine.
type SessionCompletionJob struct {
	DivisionID uuid.UUID `json:"division_id"`
	SessionID  uuid.UUID `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
}

// Kind returns the job type identifier for River.
func (SessionCompletionJob) Kind() string { return "session_completion" }

// Service schedules time-driven session completions with River.
type Service struct {
	client     *river.Client[pgx.Tx]
	logger     *slog.Logger
	dispatcher *commandbus.Dispatcher

	completer judgingservice.Service
}

var _ judgingservice.CompletionScheduler = (*Service)(nil)

// NewService creates the judging queue service. The river client and the
// completer are bound after construction.
func NewService(logger *slog.Logger, dispatcher *commandbus.Dispatcher) *Service {
	return &Service{
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// BindClient attaches the started river client.
func (s *Service) BindClient(client *river.Client[pgx.Tx]) {
	s.client = client
}

// BindCompleter wires the session state machine into the completion worker.
func (s *Service) BindCompleter(completer judgingservice.Service) {
	s.completer = completer
}

func (s *Service) ScheduleSessionCompletion(ctx context.Context, divisionID, sessionID uuid.UUID, startedAt time.Time, at time.Time) error {
	_, err := s.client.Insert(ctx, SessionCompletionJob{
		DivisionID: divisionID,
		SessionID:  sessionID,
		StartedAt:  startedAt,
	}, &river.InsertOpts{
		Queue:       "judging",
		ScheduledAt: at,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session completion: %w", err)
	}
	s.logger.Info("Scheduled session completion",
		slog.String("session_id", sessionID.String()),
		slog.Time("at", at),
	)
	return nil
}

// Worker returns the river worker handling session completion jobs.
func (s *Service) Worker() river.Worker[SessionCompletionJob] {
	return &sessionCompletionWorker{service: s}
}

type sessionCompletionWorker struct {
	river.WorkerDefaults[SessionCompletionJob]
	service *Service
}

func (w *sessionCompletionWorker) Work(ctx context.Context, job *river.Job[SessionCompletionJob]) error {
	s := w.service
	if s.completer == nil {
		return fmt.Errorf("session completer not bound")
	}

	args := job.Args
	result, err := s.dispatcher.Dispatch(ctx, args.DivisionID, "CompleteSession", func(ctx context.Context) (results.OperationResult, error) {
		return s.completer.CompleteSession(ctx, args.DivisionID, args.SessionID, args.StartedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to complete session %s: %w", args.SessionID, err)
	}
	if result.Failure != nil {
		s.logger.Info("Session completion no-op",
			slog.String("session_id", args.SessionID.String()),
			slog.Any("rejection", result.Failure),
		)
	}
	return nil
}
