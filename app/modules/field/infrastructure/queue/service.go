package fieldqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	fieldservice "github.com/openlems/lems-backend/app/modules/field/application"
	"github.com/openlems/lems-backend/app/shared/results"
	"github.com/openlems/lems-backend/internal/commandbus"
)

// Service schedules time-driven match completions with River. The worker
// funnels completions through the same command serializer as every other
// mutation, so a timed completion never races an operator command.
type Service struct {
	client     *river.Client[pgx.Tx]
	logger     *slog.Logger
	dispatcher *commandbus.Dispatcher

	completer fieldservice.Service
}

var _ fieldservice.CompletionScheduler = (*Service)(nil)

// NewService creates the field queue service. The river client and the
// completer are bound after construction: the worker must be registered
// before the client exists, and the field service depends on this
// scheduler.
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

// BindCompleter wires the match state machine into the completion worker.
func (s *Service) BindCompleter(completer fieldservice.Service) {
	s.completer = completer
}

// ScheduleMatchCompletion enqueues a completion job to run at the given time.
func (s *Service) ScheduleMatchCompletion(ctx context.Context, divisionID, matchID uuid.UUID, at time.Time) error {
	_, err := s.client.Insert(ctx, MatchCompletionJob{
		DivisionID: divisionID,
		MatchID:    matchID,
	}, &river.InsertOpts{
		Queue:       "field",
		ScheduledAt: at,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule match completion: %w", err)
	}
	s.logger.Info("Scheduled match completion",
		slog.String("match_id", matchID.String()),
		slog.Time("at", at),
	)
	return nil
}

// CancelMatchCompletion cancels the pending completion job for a match.
// Best effort: the worker is idempotent against aborted matches, so a job
// that slips through is rejected by the state machine.
func (s *Service) CancelMatchCompletion(ctx context.Context, matchID uuid.UUID) error {
	params := river.NewJobListParams().
		Kinds(MatchCompletionJob{}.Kind()).
		States(rivertype.JobStateScheduled, rivertype.JobStateAvailable).
		First(100)

	jobs, err := s.client.JobList(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list completion jobs: %w", err)
	}

	for _, job := range jobs.Jobs {
		var args MatchCompletionJob
		if err := json.Unmarshal(job.EncodedArgs, &args); err != nil {
			continue
		}
		if args.MatchID != matchID {
			continue
		}
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			return fmt.Errorf("failed to cancel completion job %d: %w", job.ID, err)
		}
		s.logger.Info("Canceled match completion job",
			slog.String("match_id", matchID.String()),
			slog.Int64("job_id", job.ID),
		)
	}
	return nil
}

// Worker returns the river worker handling match completion jobs.
func (s *Service) Worker() river.Worker[MatchCompletionJob] {
	return &matchCompletionWorker{service: s}
}

type matchCompletionWorker struct {
	river.WorkerDefaults[MatchCompletionJob]
	service *Service
}

func (w *matchCompletionWorker) Work(ctx context.Context, job *river.Job[MatchCompletionJob]) error {
	s := w.service
	if s.completer == nil {
		return fmt.Errorf("match completer not bound")
	}

	args := job.Args
	result, err := s.dispatcher.Dispatch(ctx, args.DivisionID, "CompleteMatch", func(ctx context.Context) (results.OperationResult, error) {
		return s.completer.CompleteMatch(ctx, args.DivisionID, args.MatchID)
	})
	if err != nil {
		return fmt.Errorf("failed to complete match %s: %w", args.MatchID, err)
	}
	if result.Failure != nil {
		// The match was aborted or already finished before the timer fired.
		s.logger.Info("Match completion no-op",
			slog.String("match_id", args.MatchID.String()),
			slog.Any("rejection", result.Failure),
		)
	}
	return nil
}
