// Package backendclient implements the BackendClient peripheral
// capability (§6): the HTTP API Network speaks to register tickets and
// fetch queue state. Transport and JSON mapping are explicitly out of
// scope for this specification (§1 Non-goals), so this default
// implementation is a deliberate, documented net/http+encoding/json
// exception rather than a library pulled from the retrieved corpus —
// see DESIGN.md.
package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/siantika/dispenserd/internal/domain"
)

// BackendClient is the HTTP API surface Network depends on.
type BackendClient interface {
	GetInitialData(ctx context.Context) (domain.InitialData, error)
	RegisterTicket(ctx context.Context, t domain.Ticket) error
	GetQueueInfo(ctx context.Context) (domain.VehicleQueueInfo, error)
}

// envelope mirrors the backend's {"data": ...} response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// HTTPClient is the default BackendClient, a thin JSON-over-HTTP client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// New constructs an HTTPClient against baseURL with the given request
// timeout.
func New(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reader).Encode(body); err != nil {
			return domain.Wrap("backendclient.do", domain.ErrCodeTransportFailure, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reader)
	if err != nil {
		return domain.Wrap("backendclient.do", domain.ErrCodeTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Wrap("backendclient.do", domain.ErrCodeTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.New("backendclient.do", domain.ErrCodeTransportFailure,
			fmt.Sprintf("unexpected status %d from %s %s", resp.StatusCode, method, path))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Wrap("backendclient.do", domain.ErrCodeTransportFailure, err)
	}
	return nil
}

// GetInitialData fetches the last committed ticket sequence and the
// service catalog. The supervisor calls it once at boot, and Network's
// health check calls it on every interval.
func (c *HTTPClient) GetInitialData(ctx context.Context) (domain.InitialData, error) {
	var env envelope[domain.InitialData]
	if err := c.do(ctx, http.MethodGet, "/api/v1/initial-data", nil, &env); err != nil {
		return domain.InitialData{}, err
	}
	return env.Data, nil
}

// RegisterTicket reports a newly issued ticket to the backend.
func (c *HTTPClient) RegisterTicket(ctx context.Context, t domain.Ticket) error {
	return c.do(ctx, http.MethodPost, "/api/v1/tickets", t, nil)
}

// GetQueueInfo fetches the current vehicle count and estimate inputs,
// polled on the greeting's estimate-announcement path.
func (c *HTTPClient) GetQueueInfo(ctx context.Context) (domain.VehicleQueueInfo, error) {
	var env envelope[domain.VehicleQueueInfo]
	if err := c.do(ctx, http.MethodGet, "/api/v1/queue-info", nil, &env); err != nil {
		return domain.VehicleQueueInfo{}, err
	}
	return env.Data, nil
}

var _ BackendClient = (*HTTPClient)(nil)
