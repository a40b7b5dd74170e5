package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"

	appoutbox "addisstay/internal/app/outbox"
)

type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// NewProducerFrom wraps an existing sync producer.
func NewProducerFrom(sync sarama.SyncProducer) *Producer {
	return &Producer{sync: sync}
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// Envelope is the CloudEvents structured-mode body put on the wire.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Subject         string          `json:"subject,omitempty"`
	Data            json.RawMessage `json:"data"`
}

const typeSuffix = ".v1"

// Publisher puts outbox records on per-aggregate topics, e.g. booking.* events
// go to "booking.events.v1".
type Publisher struct {
	Producer    *Producer
	TopicPrefix string
	Source      string
}

func (p Publisher) HandleEvent(ctx context.Context, rec appoutbox.EventRecord) error {
	source := p.Source
	if source == "" {
		source = "app://addisstay"
	}
	env := Envelope{
		SpecVersion:     "1.0",
		ID:              rec.ID,
		Type:            rec.Name + typeSuffix,
		Source:          source,
		Time:            rec.OccurredAt,
		DataContentType: "application/json",
		Subject:         rec.Aggregate,
		Data:            json.RawMessage(rec.Payload),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return p.Producer.Publish(ctx, TopicFor(p.TopicPrefix, rec.Name), rec.Aggregate, payload, headers)
}

// TopicFor maps an event name to its topic.
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events" + typeSuffix
}

// Topics lists the topics the notification projector subscribes to.
func Topics(prefix string) []string {
	return []string{
		TopicFor(prefix, "booking."),
		TopicFor(prefix, "review."),
		TopicFor(prefix, "message."),
		TopicFor(prefix, "listing."),
	}
}

var _ appoutbox.Handler = Publisher{}
