package memory

import (
	"context"
	"log/slog"
	"sync"

	"addisstay/internal/app/outbox"
)

// Outbox collects committed records and hands them to Handler on Flush. A
// failing handler is logged; the record is not retried.
type Outbox struct {
	Handler  outbox.Handler
	Logger   *slog.Logger
	Observer interface{ OutboxEvent(name string, err error) }

	mu      sync.Mutex
	pending []outbox.EventRecord
}

func NewOutbox(handler outbox.Handler, logger *slog.Logger) *Outbox {
	return &Outbox{Handler: handler, Logger: logger}
}

// Add queues a record outside any unit.
func (o *Outbox) Add(ctx context.Context, rec outbox.EventRecord) error {
	o.enqueue([]outbox.EventRecord{rec})
	return nil
}

func (o *Outbox) enqueue(records []outbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, records...)
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()
	if o.Handler == nil {
		return nil
	}
	for _, rec := range batch {
		err := o.Handler.HandleEvent(ctx, rec)
		if o.Observer != nil {
			o.Observer.OutboxEvent(rec.Name, err)
		}
		if err != nil && o.Logger != nil {
			o.Logger.Error("event handler failed", "event", rec.Name, "event_id", rec.ID, "error", err)
		}
	}
	return nil
}

// Pending returns a copy of the queued records.
func (o *Outbox) Pending() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]outbox.EventRecord(nil), o.pending...)
}

var _ outbox.Outbox = (*Outbox)(nil)
