// Package transport provides HTTP transports for model API clients.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// statusOverloaded is returned by the Anthropic API when it is temporarily overloaded
	statusOverloaded = 529

	defaultMaxWait     = 2 * time.Minute
	defaultMaxAttempts = 5
)

// RetryAfterTransport retries requests that were rejected with 429 or 529 and carry a retry-after header, waiting for
// the advertised duration
type RetryAfterTransport struct {
	base        http.RoundTripper
	maxWait     time.Duration // Responses asking for a longer wait are returned to the caller
	maxAttempts int
	sleep       func(req *http.Request, d time.Duration) error
}

// WithRetryAfter wraps a transport. A nil base uses http.DefaultTransport
func WithRetryAfter(base http.RoundTripper) *RetryAfterTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryAfterTransport{
		base:        base,
		maxWait:     defaultMaxWait,
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepOrCancel,
	}
}

func (t *RetryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for attempt := 1; ; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}
		if attempt >= t.maxAttempts || !retryable(resp.StatusCode) {
			return resp, nil
		}

		wait, ok := parseRetryAfter(resp.Header.Get("retry-after"), time.Now())
		if !ok || wait > t.maxWait {
			return resp, nil
		}

		// Drain and close the rejected response so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		if err := resp.Body.Close(); err != nil {
			return nil, fmt.Errorf("failed to close response body: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"wait":    wait.String(),
			"attempt": attempt,
		}).Warn("Rate limited, waiting before retrying")
		if err := t.sleep(req, wait); err != nil {
			return nil, err
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == statusOverloaded
}

// parseRetryAfter parses a retry-after header given either in seconds or as an HTTP date
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if retryTime, err := http.ParseTime(value); err == nil {
		wait := retryTime.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}
	return 0, false
}

func sleepOrCancel(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
