package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC)

func mk(t *testing.T, id string, typ Type, read bool, age time.Duration) *Notification {
	t.Helper()
	n, err := New(CreateParams{ID: ID(id), UserID: "host-1", Type: typ, Title: "t " + id, Now: now.Add(-age)})
	require.NoError(t, err)
	n.Read = read
	return n
}

func TestNewValidation(t *testing.T) {
	_, err := New(CreateParams{UserID: "", Type: TypeBooking, Title: "x"})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = New(CreateParams{UserID: "u", Type: "fax", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = New(CreateParams{UserID: "u", Type: TypeBooking, Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = New(CreateParams{UserID: "u", Type: TypeBooking, Title: " "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	n, err := New(CreateParams{UserID: "u", Type: TypeSystem, Title: "Listing updated", Now: now})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.False(t, n.Read)
}

func TestFilters(t *testing.T) {
	items := []*Notification{
		mk(t, "msg", TypeMessage, false, 1*time.Hour),
		mk(t, "booking", TypeBooking, false, 2*time.Hour),
		mk(t, "payment", TypePayment, true, 3*time.Hour),
		mk(t, "review", TypeReview, true, 4*time.Hour),
		mk(t, "reminder", TypeReminder, false, 5*time.Hour),
		mk(t, "system", TypeSystem, true, 6*time.Hour),
	}

	assert.Equal(t, []ID{"msg", "booking", "payment", "review", "reminder", "system"}, ids(Apply(items, FilterAll)))
	assert.Equal(t, []ID{"msg", "booking", "reminder"}, ids(Apply(items, FilterUnread)))
	assert.Equal(t, []ID{"msg"}, ids(Apply(items, FilterMessages)))
	assert.Equal(t, []ID{"booking", "reminder"}, ids(Apply(items, FilterBookings)))
	assert.Equal(t, []ID{"payment"}, ids(Apply(items, FilterPayments)))
	assert.Equal(t, FilterAll, ParseFilter("archived"))
	assert.Equal(t, 3, UnreadCount(items))
}

func TestApplyOrdersNewestFirst(t *testing.T) {
	older := mk(t, "older", TypeSystem, false, 2*time.Hour)
	newer := mk(t, "newer", TypeSystem, false, time.Minute)
	assert.Equal(t, []ID{"newer", "older"}, ids(Apply([]*Notification{older, newer}, FilterAll)))
}

func TestOwnership(t *testing.T) {
	n := mk(t, "x", TypeBooking, false, 0)
	assert.NoError(t, n.EnsureOwner("host-1"))
	assert.ErrorIs(t, n.EnsureOwner("guest-1"), ErrNotOwner)
	n.MarkRead()
	assert.True(t, n.Read)
}

func ids(items []*Notification) []ID {
	out := make([]ID, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}
