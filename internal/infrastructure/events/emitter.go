package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventTypeMatch   = "match"
	EventTypeMessage = "message"
)

// EventPayload is the envelope every consumer of the exchange decodes.
type EventPayload struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Emitter publishes match events to a durable fanout exchange. A channel is
// opened per publish because amqp channels are not safe for concurrent use.
type Emitter struct {
	open     func() (channel, error)
	exchange string
	logger   *zap.Logger
}

// NewEmitter declares the exchange on conn and returns an Emitter bound to it.
func NewEmitter(conn *amqp.Connection, exchange string, logger *zap.Logger) (*Emitter, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	open := func() (channel, error) { return conn.Channel() }
	return newEmitter(open, exchange, logger), nil
}

func newEmitter(open func() (channel, error), exchange string, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{open: open, exchange: exchange, logger: logger}
}

func (e *Emitter) PublishMatch(ctx context.Context, event domain.MatchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal match event: %w", err)
	}
	return e.publish(ctx, EventPayload{EventType: EventTypeMatch, Data: data})
}

// PublishMessage announces a delivered direct message so the receiver can be
// notified.
func (e *Emitter) PublishMessage(ctx context.Context, message domain.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}
	return e.publish(ctx, EventPayload{EventType: EventTypeMessage, Data: data})
}

func (e *Emitter) publish(ctx context.Context, payload EventPayload) error {
	ch, err := e.open()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		e.exchange,
		"",    // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("exchange", e.exchange),
		zap.String("event_type", payload.EventType),
	)
	return nil
}

// LogPublisher records events in the log only. Used when no broker is
// configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishMatch(_ context.Context, event domain.MatchEvent) error {
	p.logger.Info("match event",
		zap.Int("user_id", event.UserID),
		zap.Int("matched_user_id", event.MatchedUserID),
		zap.Time("matched_at", event.MatchedAt),
	)
	return nil
}

// PublishMessage logs the routing fields only, never the body.
func (p *LogPublisher) PublishMessage(_ context.Context, message domain.Message) error {
	p.logger.Info("message event",
		zap.Int("message_id", message.ID),
		zap.Int("sender_id", message.SenderID),
		zap.Int("receiver_id", message.ReceiverID),
	)
	return nil
}
