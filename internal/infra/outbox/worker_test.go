package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "addisstay/internal/app/outbox"
)

type fakeQueue struct {
	mu      sync.Mutex
	pending []*EventDocument
	sent    []string
	failed  map[string]time.Time
}

func (q *fakeQueue) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	doc := q.pending[0]
	q.pending = q.pending[1:]
	doc.ClaimedBy = workerID
	return doc, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type countingObserver struct{ ok, failed int }

func (o *countingObserver) OutboxEvent(name string, err error) {
	if err != nil {
		o.failed++
		return
	}
	o.ok++
}

func TestDrainDeliversAndRetriesFailures(t *testing.T) {
	queue := &fakeQueue{pending: []*EventDocument{
		{ID: "e1", Name: "booking.requested", Payload: []byte(`{}`)},
		{ID: "e2", Name: "booking.confirmed", Payload: []byte(`{}`), Attempts: 1},
		{ID: "e3", Name: "review.submitted", Payload: []byte(`{}`)},
	}}
	var delivered []string
	sink := appoutbox.HandlerFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
		if rec.ID == "e2" {
			return errors.New("broker down")
		}
		delivered = append(delivered, rec.ID)
		return nil
	})
	obs := &countingObserver{}
	w := &Worker{Store: queue, Sink: sink, ID: "w1", Backoff: []time.Duration{time.Second, time.Minute}, Observer: obs}

	before := time.Now()
	sent, err := w.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"e1", "e3"}, delivered)
	assert.Equal(t, []string{"e1", "e3"}, queue.sent)
	require.Contains(t, queue.failed, "e2")
	assert.WithinDuration(t, before.Add(time.Minute), queue.failed["e2"], 5*time.Second)
	assert.Equal(t, 2, obs.ok)
	assert.Equal(t, 1, obs.failed)
}

func TestDrainStopsAtBatchSize(t *testing.T) {
	queue := &fakeQueue{}
	for _, id := range []string{"a", "b", "c"} {
		queue.pending = append(queue.pending, &EventDocument{ID: id, Name: "x.y"})
	}
	w := &Worker{Store: queue, Sink: appoutbox.HandlerFunc(func(context.Context, appoutbox.EventRecord) error { return nil }), Batch: 2}
	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, queue.pending, 1)
}

func TestRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestNextRetryUsesLastBackoffWhenExhausted(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second}}
	assert.WithinDuration(t, time.Now().Add(time.Second), w.nextRetry(5), time.Second)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), (&Worker{}).nextRetry(0), time.Second)
}
