package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "addisstay/internal/app/outbox"
)

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "booking.events.v1", TopicFor("", "booking.requested"))
	assert.Equal(t, "prod.review.events.v1", TopicFor("prod.", "review.submitted"))
	assert.Contains(t, Topics(""), "message.events.v1")
}

func TestPublisherWrapsRecordInEnvelope(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	defer func() { _ = sync.Close() }()

	rec := appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"b1"}`),
		OccurredAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Aggregate:  "b1",
		Headers:    map[string]string{"traceparent": "00-abc"},
	}

	var sent []byte
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		var err error
		sent, err = msg.Value.Encode()
		return err
	})

	pub := Publisher{Producer: NewProducerFrom(sync)}
	require.NoError(t, pub.HandleEvent(context.Background(), rec))

	var env Envelope
	require.NoError(t, json.Unmarshal(sent, &env))
	assert.Equal(t, "evt-1", env.ID)
	assert.Equal(t, "booking.confirmed.v1", env.Type)
	assert.Equal(t, "app://addisstay", env.Source)
	assert.JSONEq(t, `{"booking_id":"b1"}`, string(env.Data))
}

type memoryInbox map[string]bool

func (m memoryInbox) Forget(ctx context.Context, id string) error {
	delete(m, id)
	return nil
}

func (m memoryInbox) Seen(ctx context.Context, id string) (bool, error) {
	if m[id] {
		return true, nil
	}
	m[id] = true
	return false, nil
}

func TestEventHandlerDecodesAndDeduplicates(t *testing.T) {
	body, err := json.Marshal(Envelope{
		SpecVersion: "1.0",
		ID:          "evt-9",
		Type:        "message.sent.v1",
		Time:        time.Now().UTC(),
		Data:        json.RawMessage(`{"conversation_id":"c1"}`),
	})
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Topic: "message.events.v1", Key: []byte("c1"), Value: body}

	var got []appoutbox.EventRecord
	h := EventHandler{
		Inbox: memoryInbox{},
		Next: appoutbox.HandlerFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
			got = append(got, rec)
			return nil
		}),
	}
	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Len(t, got, 1)
	assert.Equal(t, "message.sent", got[0].Name)
	assert.Equal(t, "c1", got[0].Aggregate)
	assert.JSONEq(t, `{"conversation_id":"c1"}`, string(got[0].Payload))
}

func TestEventHandlerSkipsMalformedMessages(t *testing.T) {
	called := false
	h := EventHandler{Next: appoutbox.HandlerFunc(func(context.Context, appoutbox.EventRecord) error {
		called = true
		return nil
	})}
	assert.NoError(t, h.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")}))
	assert.False(t, called)

	_, err := DecodeRecord(&sarama.ConsumerMessage{Value: []byte(`{"id":""}`)})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEventHandlerForgetsFailedEvents(t *testing.T) {
	body, err := json.Marshal(Envelope{ID: "evt-2", Type: "booking.requested.v1", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Value: body}

	attempts := 0
	inbox := memoryInbox{}
	h := EventHandler{Inbox: inbox, Next: appoutbox.HandlerFunc(func(context.Context, appoutbox.EventRecord) error {
		attempts++
		if attempts == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})}
	assert.Error(t, h.Handle(context.Background(), msg))
	assert.NotContains(t, inbox, "evt-2")
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 2, attempts)
}
