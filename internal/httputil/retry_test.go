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

func init() {
	RetryBaseDelay = time.Millisecond
}

func flaky(failures int32, code int) (*httptest.Server, *int32) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= failures {
			w.WriteHeader(code)
			return
		}
		w.Write([]byte("ok"))
	}))
	return ts, &calls
}

func TestGetRetriesTransientStatuses(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		ts, calls := flaky(2, code)
		body, err := Get(context.Background(), ts.Client(), ts.URL, nil)
		ts.Close()
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	}
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	ts, calls := flaky(100, http.StatusTooManyRequests)
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(defaultMaxRetries+1), atomic.LoadInt32(calls))
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	ts, calls := flaky(1, http.StatusNotFound)
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, nil)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDoWithRetryHonoursCancel(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Hour
	defer func() { RetryBaseDelay = old }()

	ts, _ := flaky(100, http.StatusTooManyRequests)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(ctx, ts.Client(), req, 3, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
