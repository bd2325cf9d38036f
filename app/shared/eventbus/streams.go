package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamCreator provisions one JetStream stream per division, idempotently.
type StreamCreator struct {
	js             jetstream.JetStream
	logger         *slog.Logger
	createdStreams map[string]bool
	mu             sync.Mutex
}

func NewStreamCreator(js jetstream.JetStream, logger *slog.Logger) *StreamCreator {
	return &StreamCreator{
		js:             js,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}
}

// StreamName returns the JetStream stream name owning a division's subjects.
func StreamName(divisionID uuid.UUID) string {
	return "lems-" + strings.ReplaceAll(divisionID.String(), "-", "")
}

// EnsureStream creates the division stream if it does not exist yet.
func (sc *StreamCreator) EnsureStream(ctx context.Context, divisionID uuid.UUID) error {
	name := StreamName(divisionID)

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.createdStreams[name] {
		return nil
	}

	_, err := sc.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{fmt.Sprintf("lems.%s.>", divisionID)},
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		sc.logger.Error("Failed to create stream",
			slog.String("stream", name),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}

	sc.logger.Info("Stream ready", slog.String("stream", name))
	sc.createdStreams[name] = true
	return nil
}
