// internal/llm/retry_test.go
package llm

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestIsRetryableError tests retry classification of errors
func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "rate limit", err: fmt.Errorf("rate limit exceeded: slow down"), retryable: true},
		{name: "server error 500", err: fmt.Errorf("API error 500: boom"), retryable: true},
		{name: "bad gateway", err: fmt.Errorf("API error 502: bad gateway"), retryable: true},
		{name: "timeout", err: fmt.Errorf("context deadline exceeded"), retryable: true},
		{name: "connection refused", err: fmt.Errorf("dial tcp: connection refused"), retryable: true},
		{name: "invalid api key", err: fmt.Errorf("invalid API key: nope"), retryable: false},
		{name: "bad request", err: fmt.Errorf("bad request: malformed"), retryable: false},
		{name: "unknown error", err: fmt.Errorf("something odd"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

// TestCalculateBackoff tests exponential backoff bounds
func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := 5 * time.Second

	for attempt := 0; attempt < 10; attempt++ {
		delay := calculateBackoff(attempt, base, max)

		// Jitter range is 0.5x to 1.5x of the capped exponential delay
		assert.GreaterOrEqual(t, delay, base/2,
			"attempt %d delay below jitter floor", attempt)
		assert.LessOrEqual(t, delay, max*3/2,
			"attempt %d delay above jitter ceiling", attempt)
	}
}

// TestCalculateBackoffGrows tests that backoff grows with attempts before the cap
func TestCalculateBackoffGrows(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Hour // effectively uncapped

	// With jitter in [0.5, 1.5], attempt 4 (1.6s base) always exceeds
	// attempt 0's ceiling (150ms).
	early := calculateBackoff(0, base, max)
	late := calculateBackoff(4, base, max)
	assert.Greater(t, late, early)
}

// TestIsHTTPStatusRetryable tests HTTP status retry classification
func TestIsHTTPStatusRetryable(t *testing.T) {
	retryable := []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
	for _, code := range retryable {
		assert.True(t, isHTTPStatusRetryable(code), "status %d should be retryable", code)
	}

	notRetryable := []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
	}
	for _, code := range notRetryable {
		assert.False(t, isHTTPStatusRetryable(code), "status %d should not be retryable", code)
	}
}
