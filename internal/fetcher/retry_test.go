package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestShouldRetryStatuses(t *testing.T) {
	policy := NewRetryPolicy(3)

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"server error", 500, true},
		{"bad gateway", 502, true},
		{"service unavailable", 503, true},
		{"gateway timeout", 504, true},
		{"request timeout", 408, true},
		{"rate limited", 429, true},
		{"not found", 404, false},
		{"forbidden", 403, false},
		{"gone", 410, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &HTTPError{URL: "https://example.com", Status: tt.status}
			assert.Equal(t, tt.want, policy.ShouldRetry(0, err))
		})
	}
}

func TestShouldRetryNetworkError(t *testing.T) {
	policy := NewRetryPolicy(3)

	err := &NetworkError{URL: "https://example.com", Err: errors.New("connection refused")}
	assert.True(t, policy.ShouldRetry(0, err))
}

func TestShouldRetryStopsAtLastAttempt(t *testing.T) {
	policy := NewRetryPolicy(3)
	err := &HTTPError{URL: "https://example.com", Status: 500}

	assert.True(t, policy.ShouldRetry(0, err))
	assert.True(t, policy.ShouldRetry(1, err))
	assert.False(t, policy.ShouldRetry(2, err))
}

func TestShouldRetryNilError(t *testing.T) {
	policy := NewRetryPolicy(3)
	assert.False(t, policy.ShouldRetry(0, nil))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(&HTTPError{Status: 404}))
	assert.False(t, IsPermanent(&HTTPError{Status: 429}))
	assert.False(t, IsPermanent(&HTTPError{Status: 500}))
	assert.False(t, IsPermanent(errors.New("something else")))
}

func TestCalculateBackoffGrowsAndCaps(t *testing.T) {
	policy := &RetryPolicy{
		MaxAttempts:       10,
		InitialBackoff:    time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}

	// Jitter is ±25%, so bounds are checked rather than exact values
	first := policy.CalculateBackoff(0)
	assert.GreaterOrEqual(t, first, 750*time.Millisecond)
	assert.LessOrEqual(t, first, 1250*time.Millisecond)

	capped := policy.CalculateBackoff(8)
	assert.LessOrEqual(t, capped, 12500*time.Millisecond)
}

func TestExecuteStopsOnPermanentError(t *testing.T) {
	policy := NewRetryPolicy(3)
	logger := arbor.NewLogger()

	calls := 0
	err := policy.Execute(context.Background(), logger, func() error {
		calls++
		return &HTTPError{URL: "https://example.com", Status: 404}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteRetriesTransientThenSucceeds(t *testing.T) {
	policy := NewRetryPolicy(3)
	policy.InitialBackoff = time.Millisecond
	logger := arbor.NewLogger()

	calls := 0
	err := policy.Execute(context.Background(), logger, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{URL: "https://example.com", Status: 503}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	policy := NewRetryPolicy(2)
	policy.InitialBackoff = time.Millisecond
	logger := arbor.NewLogger()

	calls := 0
	err := policy.Execute(context.Background(), logger, func() error {
		calls++
		return &NetworkError{URL: "https://example.com", Err: errors.New("reset")}
	})

	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}
