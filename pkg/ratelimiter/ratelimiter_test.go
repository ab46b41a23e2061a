package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newera.app/reentry/pkg/apperror"
)

func TestLimiterWithoutRedisAlwaysAllows(t *testing.T) {
	l := New(nil)

	ok, err := l.Acquire(context.Background(), "staff-1", "create_referral", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := l.TTL(context.Background(), "staff-1", "create_referral")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	assert.NoError(t, l.Release(context.Background(), "staff-1", "create_referral"))
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second}
	assert.Equal(t, "slow down", err.Error())
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
}
