package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(window time.Duration, max int) *FixedWindowLimiter {
	return NewFixedWindowLimiter(FixedWindowConfig{
		Window:      window,
		MaxRequests: max,
	})
}

func TestFixedWindowLimiter_RemainingCountsDown(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 3)
	now := time.Now()

	info := limiter.Check("1.2.3.4", now)
	require.True(t, info.Allowed)
	assert.Equal(t, 3, info.Limit)
	assert.Equal(t, 2, info.Remaining)
	assert.Equal(t, now.Add(time.Minute), info.ResetAt)

	info = limiter.Check("1.2.3.4", now.Add(time.Second))
	require.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	info = limiter.Check("1.2.3.4", now.Add(2*time.Second))
	require.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)
}

func TestFixedWindowLimiter_RejectsAtLimitWithoutExtendingWindow(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 2)
	now := time.Now()

	limiter.Check("1.2.3.4", now)
	info := limiter.Check("1.2.3.4", now.Add(time.Second))
	require.True(t, info.Allowed)
	resetAt := info.ResetAt

	// Rejected requests must not mutate the window.
	for i := 0; i < 5; i++ {
		info = limiter.Check("1.2.3.4", now.Add(time.Duration(2+i)*time.Second))
		require.False(t, info.Allowed)
		assert.Equal(t, 0, info.Remaining)
		assert.Equal(t, resetAt, info.ResetAt)
	}
}

func TestFixedWindowLimiter_ExpiredWindowTreatedAsAbsent(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 1)
	now := time.Now()

	info := limiter.Check("1.2.3.4", now)
	require.True(t, info.Allowed)

	info = limiter.Check("1.2.3.4", now.Add(time.Second))
	require.False(t, info.Allowed)

	// At exactly resetAt the window is over; no sweep has run.
	info = limiter.Check("1.2.3.4", now.Add(time.Minute))
	require.True(t, info.Allowed)
	assert.Equal(t, now.Add(2*time.Minute), info.ResetAt)
}

func TestFixedWindowLimiter_IdentitiesAreIsolated(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 1)
	now := time.Now()

	require.True(t, limiter.Check("1.2.3.4", now).Allowed)
	require.False(t, limiter.Check("1.2.3.4", now).Allowed)

	require.True(t, limiter.Check("5.6.7.8", now).Allowed)
}

func TestFixedWindowLimiter_SixtySecondWindowScenario(t *testing.T) {
	limiter := newTestLimiter(60000*time.Millisecond, 2)
	base := time.Unix(1_700_000_000, 0)

	assert.True(t, limiter.Check("client", base).Allowed)
	assert.True(t, limiter.Check("client", base.Add(10*time.Second)).Allowed)
	assert.False(t, limiter.Check("client", base.Add(30*time.Second)).Allowed)
	assert.False(t, limiter.Check("client", base.Add(59*time.Second)).Allowed)

	info := limiter.Check("client", base.Add(60*time.Second))
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestFixedWindowLimiter_SweepReclaimsOnlyExpired(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 5)
	now := time.Now()

	limiter.Check("old-1", now)
	limiter.Check("old-2", now)
	limiter.Check("fresh", now.Add(30*time.Second))
	require.Equal(t, 3, limiter.Size())

	reclaimed := limiter.Sweep(now.Add(time.Minute))
	assert.Equal(t, 2, reclaimed)
	assert.Equal(t, 1, limiter.Size())

	// The surviving record still enforces its count.
	info := limiter.Check("fresh", now.Add(65*time.Second))
	assert.True(t, info.Allowed)
	assert.Equal(t, 3, info.Remaining)
}

func TestFixedWindowLimiter_ResetClearsOneIdentity(t *testing.T) {
	limiter := newTestLimiter(time.Minute, 1)
	now := time.Now()

	limiter.Check("1.2.3.4", now)
	limiter.Check("5.6.7.8", now)
	require.False(t, limiter.Check("1.2.3.4", now).Allowed)

	limiter.Reset("1.2.3.4")

	assert.True(t, limiter.Check("1.2.3.4", now).Allowed)
	assert.False(t, limiter.Check("5.6.7.8", now).Allowed)
}
