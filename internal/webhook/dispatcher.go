package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/secretwatch/expiry-tracker/internal/teams"
)

// Outcome is the result of one delivery attempt. Failures are captured
// here rather than returned as errors: one customer's unreachable webhook
// must never abort the rest of a notification run.
type Outcome struct {
	Success bool
	// Status is the HTTP status code, or 0 if no response was received.
	Status int
	// Err holds the transport or encoding error when Success is false
	// and the failure was not an HTTP status.
	Err error
}

// Dispatcher abstracts delivery of one rendered card to one webhook URL.
// Mocking this interface in tests gives full control over delivery
// behaviour without making real HTTP calls.
type Dispatcher interface {
	Deliver(ctx context.Context, url string, msg *teams.Message) Outcome
}

// HTTPDispatcher posts MessageCards to Teams incoming webhooks.
type HTTPDispatcher struct {
	httpClient *http.Client
}

func NewHTTPDispatcher(timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Deliver performs a single POST of the serialized card. Any 2xx response
// counts as success; everything else — non-2xx status, malformed URL,
// network error, timeout — yields a failed Outcome. No retry happens here.
func (d *HTTPDispatcher) Deliver(ctx context.Context, url string, msg *teams.Message) Outcome {
	body, err := json.Marshal(msg)
	if err != nil {
		return Outcome{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return Outcome{
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:  resp.StatusCode,
	}
}

// compile-time check that HTTPDispatcher implements Dispatcher
var _ Dispatcher = (*HTTPDispatcher)(nil)
