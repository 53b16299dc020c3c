// Package httpretry wraps an HTTP client with exponential backoff and
// jitter. The AI model endpoints rate-limit aggressively; a couple of spaced
// retries absorbs most 429s without the runner ever noticing.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Doer executes HTTP requests. Both *http.Client and *Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client retries transient failures: 429, 5xx and network errors. Client
// errors (4xx other than 429) and context cancellation pass through
// untouched. On the final attempt the response is returned as-is so the
// caller can read the error body.
type Client struct {
	inner      Doer
	maxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// New wraps client with maxRetries retry attempts after the initial request.
func New(client Doer, maxRetries int) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Client{
		inner:      client,
		maxRetries: maxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// Do executes the request, retrying retryable failures.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset request body: %w", err)
				}
				req.Body = body
			}
			delay := c.backoff(attempt)
			log.Printf("[httpretry] attempt %d/%d for %s %s (waiting %s)",
				attempt, c.maxRetries, req.Method, req.URL.Host, delay)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			}
		}

		resp, err := c.inner.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}

		if !retryable(resp.StatusCode) || attempt == c.maxRetries {
			return resp, nil
		}

		// Drain for connection reuse before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff returns full-jitter exponential backoff, floored at 100ms.
func (c *Client) backoff(attempt int) time.Duration {
	exp := float64(c.BaseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(c.MaxDelay) {
		exp = float64(c.MaxDelay)
	}
	d := time.Duration(rand.Float64() * exp)
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	return d
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
