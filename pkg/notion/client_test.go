package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewClientDefaultsToNotionRateLimit(t *testing.T) {
	c := NewClient("secret-token").(*notionClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, rate.Limit(3), c.limiter.Limit())
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient("secret-token", WithRateLimit(10)).(*notionClient)
	require.NotNil(t, c.limiter)
	assert.Equal(t, rate.Limit(10), c.limiter.Limit())

	c = NewClient("secret-token", WithRateLimit(0)).(*notionClient)
	assert.Nil(t, c.limiter)
}

func TestCreatePageStopsAtRateLimitWhenContextCancelled(t *testing.T) {
	c := NewClient("secret-token", WithRateLimit(0.001)).(*notionClient)
	require.True(t, c.limiter.Allow(), "burst token should be available")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
