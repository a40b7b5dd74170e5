package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	appoutbox "addisstay/internal/app/outbox"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler}); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			// left unmarked; the group redelivers it after a rebalance
			continue
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// Deduplicator remembers event ids a consumer already processed. Seen marks
// the id; Forget releases it when processing failed.
type Deduplicator interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// EventHandler turns envelopes back into outbox records and passes each
// unseen one to Next.
type EventHandler struct {
	Next   appoutbox.Handler
	Inbox  Deduplicator
	Logger *slog.Logger
}

var ErrMalformedEnvelope = errors.New("kafka: malformed event envelope")

func (h EventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	rec, err := DecodeRecord(msg)
	if err != nil {
		// poison messages are logged and skipped
		h.logger().Error("dropping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, rec.ID)
		if err != nil {
			return err
		}
		if seen {
			h.logger().Debug("duplicate event skipped", "event", rec.Name, "event_id", rec.ID)
			return nil
		}
	}
	if err := h.Next.HandleEvent(ctx, rec); err != nil {
		if h.Inbox != nil {
			if forgetErr := h.Inbox.Forget(ctx, rec.ID); forgetErr != nil {
				return errors.Join(err, forgetErr)
			}
		}
		return err
	}
	return nil
}

func (h EventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// DecodeRecord reads a CloudEvents body produced by Publisher.
func DecodeRecord(msg *sarama.ConsumerMessage) (appoutbox.EventRecord, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return appoutbox.EventRecord{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.ID == "" || env.Type == "" {
		return appoutbox.EventRecord{}, ErrMalformedEnvelope
	}
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		if h != nil {
			headers[string(h.Key)] = string(h.Value)
		}
	}
	aggregate := env.Subject
	if aggregate == "" {
		aggregate = string(msg.Key)
	}
	return appoutbox.EventRecord{
		ID:         env.ID,
		Name:       strings.TrimSuffix(env.Type, typeSuffix),
		Payload:    []byte(env.Data),
		OccurredAt: env.Time,
		Aggregate:  aggregate,
		Headers:    headers,
	}, nil
}
