package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "addisstay/internal/app/outbox"
)

// Queue is the claimable side of the outbox store.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Observer is told how each delivery went.
type Observer interface {
	OutboxEvent(name string, err error)
}

// Worker relays committed records to Sink: the Kafka publisher when a broker
// is configured, the notification projector otherwise.
type Worker struct {
	Store    Queue
	Sink     appoutbox.Handler
	Interval time.Duration
	Batch    int
	ID       string
	Backoff  []time.Duration
	Observer Observer
	Logger   *slog.Logger
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Sink == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
				w.logger().Error("outbox drain failed", "error", err)
			}
		}
	}
}

// Drain delivers up to one batch of due records and reports how many were sent.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batch(); i++ {
		doc, err := w.Store.Claim(ctx, w.ID)
		if err != nil {
			return sent, err
		}
		if doc == nil {
			return sent, nil
		}
		if err := w.Sink.HandleEvent(ctx, doc.Record()); err != nil {
			w.observe(doc.Name, err)
			w.logger().Warn("outbox delivery failed", "event", doc.Name, "event_id", doc.ID, "attempts", doc.Attempts+1, "error", err)
			if markErr := w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error()); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := w.Store.MarkSent(ctx, doc.ID); err != nil {
			return sent, err
		}
		w.observe(doc.Name, nil)
		sent++
	}
	return sent, nil
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batch() int {
	if w.Batch <= 0 {
		return 100
	}
	return w.Batch
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) observe(name string, err error) {
	if w.Observer != nil {
		w.Observer.OutboxEvent(name, err)
	}
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
