// Package commandbus serializes all mutating commands for a division.
//
// Every state-changing operation in the engine is submitted here. Commands
// for one division run on a single goroutine in strict arrival order, so no
// two commands for the same division ever interleave. Commands for
// different divisions run fully in parallel. Read-only snapshot queries do
// not go through the bus.
package commandbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openlems/lems-backend/app/shared/results"
)

// Command is one serialized unit of work. It must apply its mutation
// atomically: either the durable write succeeds and the result is returned,
// or nothing happened.
type Command func(ctx context.Context) (results.OperationResult, error)

// DefaultQueueSize bounds the number of commands waiting per division.
const DefaultQueueSize = 64

var ErrDispatcherClosed = fmt.Errorf("command dispatcher is closed")

type task struct {
	ctx   context.Context
	name  string
	cmd   Command
	reply chan outcome
}

type outcome struct {
	result results.OperationResult
	err    error
}

// Dispatcher owns one worker goroutine per division.
type Dispatcher struct {
	logger    *slog.Logger
	queueSize int
	metrics   *Metrics

	mu     sync.Mutex
	queues map[uuid.UUID]chan task
	closed bool
	wg     sync.WaitGroup
}

// Metrics records command throughput and latency.
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
}

// NewMetrics registers command metrics on the given registry. A nil
// registry yields nil metrics, which the dispatcher tolerates.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		return nil
	}
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lems_commands_total",
			Help: "Serialized commands processed, by command name and outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lems_command_duration_seconds",
			Help:    "Time spent executing serialized commands.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
	registry.MustRegister(m.CommandsTotal, m.CommandDuration)
	return m
}

func NewDispatcher(logger *slog.Logger, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		logger:    logger,
		queueSize: DefaultQueueSize,
		metrics:   metrics,
		queues:    make(map[uuid.UUID]chan task),
	}
}

// Dispatch submits cmd to the division's queue and blocks until the command
// has run (or the caller's context is canceled). The returned
// OperationResult is the synchronous acknowledgement for the caller; it is
// independent of broadcast delivery to subscribers.
func (d *Dispatcher) Dispatch(ctx context.Context, divisionID uuid.UUID, name string, cmd Command) (results.OperationResult, error) {
	queue, err := d.queueFor(divisionID)
	if err != nil {
		return results.OperationResult{}, err
	}

	t := task{
		ctx:   ctx,
		name:  name,
		cmd:   cmd,
		reply: make(chan outcome, 1),
	}

	select {
	case queue <- t:
	case <-ctx.Done():
		return results.OperationResult{}, fmt.Errorf("command %s not enqueued: %w", name, ctx.Err())
	}

	select {
	case out := <-t.reply:
		return out.result, out.err
	case <-ctx.Done():
		// The worker still runs the command; the caller just stops waiting.
		return results.OperationResult{}, fmt.Errorf("command %s abandoned by caller: %w", name, ctx.Err())
	}
}

func (d *Dispatcher) queueFor(divisionID uuid.UUID) (chan task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDispatcherClosed
	}
	queue, ok := d.queues[divisionID]
	if !ok {
		queue = make(chan task, d.queueSize)
		d.queues[divisionID] = queue
		d.wg.Add(1)
		go d.worker(divisionID, queue)
	}
	return queue, nil
}

func (d *Dispatcher) worker(divisionID uuid.UUID, queue chan task) {
	defer d.wg.Done()
	for t := range queue {
		if err := t.ctx.Err(); err != nil {
			t.reply <- outcome{err: fmt.Errorf("command %s skipped: %w", t.name, err)}
			continue
		}
		start := time.Now()
		result, err := t.cmd(t.ctx)
		d.record(t.name, result, err, time.Since(start))
		d.logger.Debug("Command processed",
			slog.String("division_id", divisionID.String()),
			slog.String("command", t.name),
			slog.Bool("rejected", result.Failure != nil),
			slog.Any("error", err),
		)
		t.reply <- outcome{result: result, err: err}
	}
}

func (d *Dispatcher) record(name string, result results.OperationResult, err error, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.Failure != nil:
		outcome = "rejected"
	}
	d.metrics.CommandsTotal.WithLabelValues(name, outcome).Inc()
	d.metrics.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Close drains all division queues and stops the workers. Dispatch calls
// made after Close fail with ErrDispatcherClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
