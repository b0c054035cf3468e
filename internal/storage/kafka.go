package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/events"
	"storefront/internal/logger"

	"github.com/segmentio/kafka-go"
)

// RemoteOrigin prefixes the origin of signals that arrived from another storefront instance.
const RemoteOrigin = "remote:"

var bridgedKinds = map[events.Kind]bool{
	events.CartChanged: true,
	events.LoggedIn:    true,
	events.LoggedOut:   true,
	events.OrderPlaced: true,
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// KafkaSignalPublisher forwards local hub signals to a topic so other
// storefront instances of the same user can refresh.
type KafkaSignalPublisher struct {
	Writer     MessageWriter
	InstanceID string
	Timeout    time.Duration
	logger     *slog.Logger
}

func NewKafkaSignalPublisher(writer MessageWriter, instanceID string, log *slog.Logger) *KafkaSignalPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaSignalPublisher{Writer: writer, InstanceID: instanceID, Timeout: 5 * time.Second, logger: log}
}

// Attach subscribes the publisher to every signal on hub.
func (p *KafkaSignalPublisher) Attach(hub *events.Hub) (detach func()) {
	return hub.SubscribeAll(func(signal events.Signal) {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		if err := p.Publish(ctx, signal); err != nil {
			p.logger.Warn("signal not forwarded", "kind", signal.Kind, "error", err)
		}
	})
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, signal events.Signal) error {
	if !bridgedKinds[signal.Kind] || strings.HasPrefix(signal.Origin, RemoteOrigin) {
		return nil
	}
	payload, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.InstanceID),
		Value: payload,
	})
}

// KafkaSignalConsumer replays signals published by other instances onto the local hub.
type KafkaSignalConsumer struct {
	Reader     MessageReader
	Hub        *events.Hub
	InstanceID string
	logger     *slog.Logger
}

func NewKafkaSignalConsumer(reader MessageReader, hub *events.Hub, instanceID string, log *slog.Logger) *KafkaSignalConsumer {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaSignalConsumer{Reader: reader, Hub: hub, InstanceID: instanceID, logger: log}
}

func (c *KafkaSignalConsumer) Start(ctx context.Context) {
	c.logger.Info("signal consumer started", "instance", c.InstanceID)
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("signal consumer stopped")
				return
			}
			c.logger.Warn("error reading signal", "error", err)
			continue
		}
		c.Process(message)
	}
}

func (c *KafkaSignalConsumer) Process(message kafka.Message) {
	if string(message.Key) == c.InstanceID {
		return
	}

	var signal events.Signal
	if err := json.Unmarshal(message.Value, &signal); err != nil {
		c.logger.Warn("error unmarshaling signal", "error", err)
		return
	}
	if !bridgedKinds[signal.Kind] {
		return
	}

	signal.Origin = RemoteOrigin + string(message.Key)
	c.Hub.Publish(signal)
}
