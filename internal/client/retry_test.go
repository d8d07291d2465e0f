package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, []int{429, 500, 502, 503, 504}, p.StatusCodes)
	assert.Equal(t, 10*time.Second, p.Backoff)
	assert.Zero(t, p.MaxTries)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := testConfig("")
	seconds := 3
	cfg.Retry.StatusCodes = []int{503}
	cfg.Retry.BackoffSeconds = &seconds
	cfg.Retry.MaxTries = 4

	p := RetryPolicyFromConfig(cfg)
	assert.Equal(t, []int{503}, p.StatusCodes)
	assert.Equal(t, 3*time.Second, p.Backoff)
	assert.Equal(t, 4, p.MaxTries)

	cfg.Retry.StatusCodes[0] = 500
	assert.Equal(t, []int{503}, p.StatusCodes, "policy must not alias the configuration slice")
}

func TestRetryPolicy_ZeroBackoffFromConfig(t *testing.T) {
	cfg := testConfig("")
	zero := 0
	cfg.Retry.BackoffSeconds = &zero

	assert.Equal(t, time.Duration(0), RetryPolicyFromConfig(cfg).Backoff)
}

func TestRetryPolicy_Retryable(t *testing.T) {
	p := DefaultRetryPolicy()
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, p.Retryable(status), "status %d", status)
	}
	for _, status := range []int{200, 400, 401, 403, 404, 501} {
		assert.False(t, p.Retryable(status), "status %d", status)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()

	tests := []struct {
		name   string
		status int
		header string
		want   time.Duration
	}{
		{"429 with hint", http.StatusTooManyRequests, "3", 3 * time.Second},
		{"429 with spaced hint", http.StatusTooManyRequests, " 7 ", 7 * time.Second},
		{"429 with zero hint", http.StatusTooManyRequests, "0", 0},
		{"429 without hint", http.StatusTooManyRequests, "", 10 * time.Second},
		{"429 with negative hint", http.StatusTooManyRequests, "-1", 10 * time.Second},
		{"429 with fractional hint", http.StatusTooManyRequests, "1.5", 10 * time.Second},
		{"503 hint ignored", http.StatusServiceUnavailable, "3", 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set(retryAfter, tt.header)
			}
			if got := p.Delay(tt.status, h); got != tt.want {
				t.Errorf("Delay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyBackOff(t *testing.T) {
	b := newPolicyBackOff(5 * time.Second)
	assert.Equal(t, 5*time.Second, b.NextBackOff(), "fallback without a hint")

	b.set(2 * time.Second)
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 5*time.Second, b.NextBackOff(), "a hint is consumed once")

	b.set(time.Second)
	b.Reset()
	assert.Equal(t, 5*time.Second, b.NextBackOff())
}

func TestRetryPolicy_BackOffBudget(t *testing.T) {
	p := RetryPolicy{Backoff: time.Second, MaxTries: 3}
	b := p.backOff(context.Background(), newPolicyBackOff(p.Backoff))
	b.Reset()

	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, backoff.Stop, b.NextBackOff(), "three attempts allow two waits")
}

func TestRetryPolicy_BackOffUnbounded(t *testing.T) {
	p := RetryPolicy{Backoff: time.Second}
	b := p.backOff(context.Background(), newPolicyBackOff(p.Backoff))
	for i := 0; i < 100; i++ {
		if got := b.NextBackOff(); got != time.Second {
			t.Fatalf("wait %d = %v, want 1s", i, got)
		}
	}
}

func TestRetryPolicy_BackOffStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{Backoff: time.Second}
	b := p.backOff(ctx, newPolicyBackOff(p.Backoff))
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}
