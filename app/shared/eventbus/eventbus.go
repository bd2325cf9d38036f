package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Audience is a role-scoped broadcast channel within a division.
type Audience string

const (
	AudienceField           Audience = "field"
	AudienceJudging         Audience = "judging"
	AudiencePitAdmin        Audience = "pit-admin"
	AudienceAudienceDisplay Audience = "audience-display"
)

// EventBus publishes committed state changes to division-scoped,
// role-scoped subjects and serves ordered subscriptions on them.
//
// Ordering: all events published to one (division, audience) subject are
// observed by every subscriber in commit order. Callers must only publish
// after the durable write has succeeded.
type EventBus interface {
	Publish(ctx context.Context, divisionID uuid.UUID, audiences []Audience, eventType string, payload interface{}) error
	Subscribe(ctx context.Context, divisionID uuid.UUID, audience Audience) (<-chan *message.Message, error)
	Close() error
}

// MetadataEventType is the message metadata key carrying the event type.
const MetadataEventType = "event_type"

// MetadataDivisionID carries the owning division of the event.
const MetadataDivisionID = "division_id"

type eventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	streamCreator *StreamCreator
	natsConn      *nc.Conn
	logger        *slog.Logger
}

// NewEventBus connects to NATS JetStream and returns a division-scoped
// event bus backed by watermill-nats.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, options...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: options,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:         natsURL,
			Unmarshaler: marshaler,
			NatsOptions: options,
			JetStream: wmnats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:     publisher,
		subscriber:    subscriber,
		streamCreator: NewStreamCreator(js, logger),
		natsConn:      natsConn,
		logger:        logger,
	}, nil
}

// Subject builds the NATS subject for one (division, audience, event) tuple.
func Subject(divisionID uuid.UUID, audience Audience, eventType string) string {
	return fmt.Sprintf("lems.%s.%s.%s", divisionID, audience, normalize(eventType))
}

// SubscriptionSubject returns the wildcard subject covering every event on
// one (division, audience) channel.
func SubscriptionSubject(divisionID uuid.UUID, audience Audience) string {
	return fmt.Sprintf("lems.%s.%s.>", divisionID, audience)
}

func normalize(eventType string) string {
	return strings.ReplaceAll(eventType, " ", "_")
}

func (eb *eventBus) Publish(ctx context.Context, divisionID uuid.UUID, audiences []Audience, eventType string, payload interface{}) error {
	if err := eb.streamCreator.EnsureStream(ctx, divisionID); err != nil {
		return fmt.Errorf("failed to ensure stream for division %s: %w", divisionID, err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for event %s: %w", eventType, err)
	}

	for _, audience := range audiences {
		subject := Subject(divisionID, audience, eventType)

		msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
		msg.Metadata.Set(MetadataEventType, eventType)
		msg.Metadata.Set(MetadataDivisionID, divisionID.String())

		eb.logger.Debug("Publishing event",
			slog.String("subject", subject),
			slog.String("event_type", eventType),
			slog.String("message_id", msg.UUID),
		)

		if err := eb.publisher.Publish(subject, msg); err != nil {
			eb.logger.Error("Failed to publish event",
				slog.String("subject", subject),
				slog.String("event_type", eventType),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish event %s to %s: %w", eventType, subject, err)
		}
	}

	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, divisionID uuid.UUID, audience Audience) (<-chan *message.Message, error) {
	if err := eb.streamCreator.EnsureStream(ctx, divisionID); err != nil {
		return nil, fmt.Errorf("failed to ensure stream for division %s: %w", divisionID, err)
	}

	subject := SubscriptionSubject(divisionID, audience)
	eb.logger.Info("Subscribing to channel",
		slog.String("division_id", divisionID.String()),
		slog.String("audience", string(audience)),
	)

	messages, err := eb.subscriber.Subscribe(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return messages, nil
}

func (eb *eventBus) Close() error {
	var errs []error
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if err := eb.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	eb.natsConn.Close()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
