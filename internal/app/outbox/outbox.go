package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"addisstay/internal/domain/shared/events"
)

// EventRecord is a serialized domain event waiting for delivery.
type EventRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Payload    []byte            `json:"payload"`
	OccurredAt time.Time         `json:"occurred_at"`
	Aggregate  string            `json:"aggregate"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Outbox accepts records inside a unit of work. Flush hands committed records
// to their consumers; stores relayed by a background worker treat it as a no-op.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Handler consumes delivered records.
type Handler interface {
	HandleEvent(ctx context.Context, record EventRecord) error
}

type HandlerFunc func(ctx context.Context, record EventRecord) error

func (f HandlerFunc) HandleEvent(ctx context.Context, record EventRecord) error {
	return f(ctx, record)
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Decode unmarshals the record payload into out.
func (r EventRecord) Decode(out any) error {
	return json.Unmarshal(r.Payload, out)
}
