package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"addisstay/internal/domain/recommendations"
)

func TestRecommendationsCacheSetGetPurge(t *testing.T) {
	c := NewRecommendations(10, time.Minute)
	defer c.Stop()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []recommendations.Scored{{Score: 7}})
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 7, got[0].Score)

	c.Purge()
	_, ok = c.Get("a")
	assert.False(t, ok)
}
