// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Policy describes bounded retry with exponential backoff. Stages construct
// one policy per external endpoint; tests inject a zero-delay policy to
// avoid real sleeps.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration

	// Jitter, when positive, adds a random duration in [0, Jitter) to
	// every backoff so callers hitting the same endpoint spread out.
	Jitter time.Duration
}

// DefaultPolicy is used when a stage does not configure its own policy:
// 5 attempts with backoff 2 s, 4 s, 8 s, 16 s plus jitter.
var DefaultPolicy = Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second, Jitter: 500 * time.Millisecond}

// Backoff returns the wait before retry number attempt (0-based). The base
// delay is never shortened; jitter only adds.
func (p Policy) Backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * p.BaseDelay
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

// Wait sleeps for the backoff of the given attempt, or returns early with
// ctx.Err() when the context is cancelled.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	d := p.Backoff(attempt)
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryable reports whether a response status is worth retrying: rate
// limits and server-side errors. Other 4xx statuses are structural and
// retrying will not fix them.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request under the policy. Transport errors
// and retryable statuses (429, 5xx) are retried with exponential backoff;
// any other response is returned immediately. After exhausting attempts the
// last response (or last transport error) is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := policy.Wait(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}

		if !retryable(resp.StatusCode) || attempt == attempts-1 {
			return resp, nil
		}

		// Drain and close before retrying so the connection is reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return nil, lastErr
}
