package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/middleware"
	domainauth "addisstay/internal/domain/auth"
	domainlistings "addisstay/internal/domain/listings"
	domainuser "addisstay/internal/domain/user"
)

func TestSessionStoreSaveAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(db)
	store.now = func() time.Time { return now }

	session := &domainauth.Session{
		Token:     "tok-1",
		UserID:    "u-1",
		Roles:     []domainuser.Role{domainuser.RoleGuest},
		CreatedAt: now,
		ExpiresAt: now.Add(2 * time.Hour),
	}
	data, err := json.Marshal(sessionDocument{Token: "tok-1", UserID: "u-1", Roles: []string{"guest"}, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)})
	require.NoError(t, err)

	mock.ExpectSet("session:tok-1", data, 2*time.Hour).SetVal("OK")
	mock.ExpectSAdd("user_sessions:u-1", "tok-1").SetVal(1)
	require.NoError(t, store.Save(context.Background(), session))

	mock.ExpectGet("session:tok-1").SetVal(string(data))
	got, err := store.Get(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u-1"), got.UserID)
	assert.Equal(t, []domainuser.Role{domainuser.RoleGuest}, got.Roles)
	assert.True(t, got.ExpiresAt.Equal(now.Add(2*time.Hour)))

	mock.ExpectGet("session:missing").RedisNil()
	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStoreRejectsExpiredSession(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db)
	err := store.Save(context.Background(), &domainauth.Session{Token: "t", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)})
	assert.ErrorIs(t, err, domainauth.ErrSessionExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStoreDeleteByUser(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db)

	mock.ExpectSMembers("user_sessions:u-1").SetVal([]string{"a", "b"})
	mock.ExpectDel("session:a", "session:b", "user_sessions:u-1").SetVal(3)
	require.NoError(t, store.DeleteByUser(context.Background(), "u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(db, time.Hour)
	rec := middleware.IdempotencyRecord{Key: "bookings.request:k1", Payload: []byte(`{"id":"b1"}`), OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectGet("idem:bookings.request:k1").RedisNil()
	_, found, err := store.Get(context.Background(), rec.Key)
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectSet("idem:bookings.request:k1", data, time.Hour).SetVal("OK")
	require.NoError(t, store.Save(context.Background(), rec))

	mock.ExpectGet("idem:bookings.request:k1").SetVal(string(data))
	got, found, err := store.Get(context.Background(), rec.Key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"b1"}`, string(got.Payload))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewCounter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	views := NewViewCounter(db)

	mock.ExpectHIncrBy(viewsKey, "l1", 1).SetVal(1)
	require.NoError(t, views.Increment(context.Background(), "l1"))

	mock.ExpectHMGet(viewsKey, "l1", "l2", "l3").SetVal([]interface{}{"4", nil, "6"})
	total, err := views.Total(context.Background(), []domainlistings.ListingID{"l1", "l2", "l3"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	total, err = views.Total(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}
