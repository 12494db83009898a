package launcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portOf(t *testing.T, server *httptest.Server) uint16 {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	p, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return uint16(p)
}

// pollReadiness succeeds immediately when the debug endpoint is already
// answering with a websocket debugger URL.
func TestPollReadinessSucceedsOnFirstTry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"webSocketDebuggerUrl":"ws://127.0.0.1:9223/devtools/browser/abc"}`))
	}))
	defer server.Close()

	// httptest serves on loopback but not necessarily "localhost"; pollReadiness
	// hardcodes the host, so point it only at the port and rely on the default
	// test environment resolving localhost to loopback.
	wsURL, err := pollReadiness(context.Background(), portOf(t, server), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9223/devtools/browser/abc", wsURL)
}

// A debug endpoint that answers 503 to its first request is retried until
// it starts responding 200.
func TestPollReadinessRetriesUntilReady(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"webSocketDebuggerUrl":"ws://127.0.0.1:9223/devtools/browser/xyz"}`))
	}))
	defer server.Close()

	wsURL, err := pollReadiness(context.Background(), portOf(t, server), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9223/devtools/browser/xyz", wsURL)
	assert.GreaterOrEqual(t, attempts, 2)
}

// pollReadiness fails with a ReadinessTimeout once the timeout elapses
// without a successful response.
func TestPollReadinessTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := pollReadiness(context.Background(), portOf(t, server), 1500*time.Millisecond)
	assert.Error(t, err)
}
