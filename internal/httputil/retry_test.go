// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroPolicy retries immediately so tests never sleep.
func zeroPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts}
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		attempts   int
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "success on first attempt",
			statuses:   []int{http.StatusOK},
			attempts:   5,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "retries 429 then succeeds",
			statuses:   []int{429, 429, http.StatusOK},
			attempts:   5,
			wantStatus: http.StatusOK,
			wantCalls:  3,
		},
		{
			name:       "retries 503 then succeeds",
			statuses:   []int{503, http.StatusOK},
			attempts:   5,
			wantStatus: http.StatusOK,
			wantCalls:  2,
		},
		{
			name:       "does not retry 404",
			statuses:   []int{http.StatusNotFound, http.StatusOK},
			attempts:   5,
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
		{
			name:       "exhausts attempts and returns last 429",
			statuses:   []int{429, 429, 429},
			attempts:   3,
			wantStatus: 429,
			wantCalls:  3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				idx := int(n) - 1
				if idx >= len(tt.statuses) {
					idx = len(tt.statuses) - 1
				}
				w.WriteHeader(tt.statuses[idx])
			}))
			defer srv.Close()

			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)

			resp, err := DoWithRetry(context.Background(), srv.Client(), req, zeroPolicy(tt.attempts))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetryTransportError(t *testing.T) {
	// A server that is already closed produces transport errors on every try.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), client, req, zeroPolicy(3))
	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestDoWithRetryContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	policy := Policy{MaxAttempts: 5, BaseDelay: time.Hour}
	_, err = DoWithRetry(ctx, srv.Client(), req, policy)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyBackoff(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Second, Jitter: 250 * time.Millisecond}

	for attempt := 0; attempt < 4; attempt++ {
		base := time.Duration(1<<attempt) * time.Second
		got := p.Backoff(attempt)
		assert.GreaterOrEqual(t, got, base, "jitter must never shorten the base delay")
		assert.Less(t, got, base+p.Jitter)
	}
}

func TestPolicyBackoffNoJitter(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, p.Backoff(0))
	assert.Equal(t, 4*time.Second, p.Backoff(1))
	assert.Equal(t, 8*time.Second, p.Backoff(2))
}
