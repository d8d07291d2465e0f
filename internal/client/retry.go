package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fjacquet/hrdir/internal/models"
)

// RetryPolicy controls which responses are retried and how long to wait.
type RetryPolicy struct {
	StatusCodes []int         // Retryable HTTP statuses, in configuration order
	Backoff     time.Duration // Default delay between attempts
	MaxTries    int           // Total attempt budget; 0 means unbounded
}

// DefaultRetryPolicy retries 429 and the common gateway/server errors every
// 10 seconds with no attempt limit.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		StatusCodes: append([]int(nil), models.DefaultRetryStatusCodes...),
		Backoff:     models.DefaultBackoffSeconds * time.Second,
		MaxTries:    0,
	}
}

// RetryPolicyFromConfig builds the policy from the retry section of the configuration.
func RetryPolicyFromConfig(cfg models.Config) RetryPolicy {
	p := DefaultRetryPolicy()
	if len(cfg.Retry.StatusCodes) > 0 {
		p.StatusCodes = append([]int(nil), cfg.Retry.StatusCodes...)
	}
	if cfg.Retry.BackoffSeconds != nil {
		p.Backoff = cfg.RetryBackoff()
	}
	p.MaxTries = cfg.Retry.MaxTries
	return p
}

// Retryable reports whether status is in the retry set.
func (p RetryPolicy) Retryable(status int) bool {
	for _, code := range p.StatusCodes {
		if code == status {
			return true
		}
	}
	return false
}

// Delay returns how long to wait before retrying a response with the given
// status and headers. A 429 carrying a valid non-negative integer Retry-After
// overrides the default backoff.
func (p RetryPolicy) Delay(status int, header http.Header) time.Duration {
	if status == http.StatusTooManyRequests {
		if seconds, ok := parseRetryAfter(header.Get("Retry-After")); ok {
			return time.Duration(seconds) * time.Second
		}
	}
	return p.Backoff
}

// backOff returns the backoff.BackOff driving one logical call.
// MaxTries counts attempts, backoff counts retries, hence the -1.
func (p RetryPolicy) backOff(ctx context.Context, hint *policyBackOff) backoff.BackOff {
	var b backoff.BackOff = backoff.WithContext(hint, ctx)
	if p.MaxTries > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxTries-1))
	}
	return b
}

func parseRetryAfter(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return seconds, true
}

// policyBackOff hands backoff.Retry the delay computed from the last response.
// The executor sets next before returning a retryable error.
type policyBackOff struct {
	fallback time.Duration
	next     time.Duration
	hasNext  bool
}

func newPolicyBackOff(fallback time.Duration) *policyBackOff {
	return &policyBackOff{fallback: fallback}
}

func (b *policyBackOff) set(d time.Duration) {
	b.next = d
	b.hasNext = true
}

// NextBackOff implements backoff.BackOff.
func (b *policyBackOff) NextBackOff() time.Duration {
	if !b.hasNext {
		return b.fallback
	}
	b.hasNext = false
	return b.next
}

// Reset implements backoff.BackOff.
func (b *policyBackOff) Reset() {
	b.hasNext = false
	b.next = 0
}
