package cache

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blood-eligibility-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMemoryOnlyCache(t *testing.T, size int) *VerdictCache {
	t.Helper()
	c, err := New(domain.CacheConfig{Enabled: true, MaxMemorySize: size}, testLogger())
	require.NoError(t, err)
	return c
}

func TestVerdictCache_GetSet(t *testing.T) {
	c := newMemoryOnlyCache(t, 10)
	ctx := context.Background()

	_, ok := c.Get(ctx, "absent")
	assert.False(t, ok)

	verdict := &domain.EligibilityVerdict{
		Label:      domain.LabelEligible,
		Confidence: 87.5,
	}
	c.Set(ctx, "donor-a", verdict)

	got, ok := c.Get(ctx, "donor-a")
	require.True(t, ok)
	assert.Equal(t, domain.LabelEligible, got.Label)
	assert.InDelta(t, 87.5, got.Confidence, 1e-9)
}

func TestVerdictCache_Eviction(t *testing.T) {
	c := newMemoryOnlyCache(t, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), &domain.EligibilityVerdict{Label: domain.LabelEligible})
	}

	// The oldest entry is evicted once capacity is exceeded.
	_, ok := c.Get(ctx, "key-0")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "key-2")
	assert.True(t, ok)
}

func TestVerdictCache_Stats(t *testing.T) {
	c := newMemoryOnlyCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "k", &domain.EligibilityVerdict{Label: domain.LabelNotEligible})
	c.Get(ctx, "k")
	c.Get(ctx, "k")
	c.Get(ctx, "other")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.MemoryHits)
	assert.Equal(t, int64(1), stats.MemoryMisses)
	assert.Zero(t, stats.RedisHits)
	assert.Zero(t, stats.RedisErrors)
}

func TestVerdictCache_DefaultSize(t *testing.T) {
	c, err := New(domain.CacheConfig{Enabled: true}, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	c.Set(ctx, "k", &domain.EligibilityVerdict{Label: domain.LabelEligible})
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestVerdictCache_InvalidRedisURLDisablesTier(t *testing.T) {
	c, err := New(domain.CacheConfig{
		Enabled:       true,
		MaxMemorySize: 10,
		RedisURL:      "not-a-redis-url",
	}, testLogger())
	require.NoError(t, err)

	// The memory tier still works with the Redis tier disabled.
	ctx := context.Background()
	c.Set(ctx, "k", &domain.EligibilityVerdict{Label: domain.LabelEligible})
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	assert.NoError(t, c.Close())
}
