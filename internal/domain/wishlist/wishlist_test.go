package wishlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/listings"
)

func TestToggle(t *testing.T) {
	now := time.Now()
	w, err := New("u1")
	require.NoError(t, err)

	assert.True(t, w.Toggle("a", now))
	assert.True(t, w.Toggle("b", now))
	assert.True(t, w.Toggle("c", now))
	assert.False(t, w.Toggle("b", now))
	assert.Equal(t, []listings.ListingID{"a", "c"}, w.IDs())
	assert.True(t, w.Contains("c"))
	assert.False(t, w.Contains("b"))

	assert.True(t, w.Toggle("b", now))
	assert.Equal(t, []listings.ListingID{"a", "c", "b"}, w.IDs())

	_, err = New("")
	assert.ErrorIs(t, err, ErrUserRequired)
}
