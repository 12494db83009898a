package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jebin2/neko-launcher/internal/model"
)

// readinessPollInterval is how often pollReadiness checks the debug
// endpoint.
const readinessPollInterval = 1 * time.Second

// versionResponse is the subset of Chrome DevTools' /json/version body
// this launcher cares about.
type versionResponse struct {
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// pollReadiness polls http://localhost:<debugPort>/json/version every
// readinessPollInterval until it returns 200 with a parseable websocket
// debugger URL, or until timeout elapses.
func pollReadiness(ctx context.Context, debugPort uint16, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/json/version", debugPort)

	client := &http.Client{Timeout: readinessPollInterval}

	for {
		wsURL, ok := tryReadiness(ctx, client, url)
		if ok {
			return wsURL, nil
		}
		if time.Now().After(deadline) {
			return "", model.NewReadinessTimeoutError("", fmt.Sprintf("debug endpoint at port %d did not become ready within %s", debugPort, timeout))
		}

		select {
		case <-time.After(readinessPollInterval):
		case <-ctx.Done():
			return "", model.NewReadinessTimeoutError("", "readiness poll canceled: "+ctx.Err().Error())
		}
	}
}

// tryReadiness makes one readiness attempt. Any error or non-200 response
// is a retryable poll failure.
func tryReadiness(ctx context.Context, client *http.Client, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var v versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", false
	}
	if v.WebSocketDebuggerURL == "" {
		return "", false
	}
	return v.WebSocketDebuggerURL, true
}
