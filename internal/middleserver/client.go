package middleserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// Client talks JSON to the coordination service ("middle server").
// It carries no retry policy; retry decisions belong to the caller.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client,
// used to inject transport policy or test doubles.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
	}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a decoded service reply. Body is nil when the reply was
// not a JSON object.
type Response struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

// Success reports whether the body carries "success": true.
func (r *Response) Success() bool {
	if r.Body == nil {
		return false
	}
	success, _ := r.Body["success"].(bool)
	return success
}

// Message returns the body's "message" string, or the fallback when
// absent.
func (r *Response) Message(fallback string) string {
	if r.Body != nil {
		if msg, ok := r.Body["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

// Data returns the body's "data" object, or nil.
func (r *Response) Data() map[string]any {
	if r.Body == nil {
		return nil
	}
	data, _ := r.Body["data"].(map[string]any)
	return data
}

// StatusError is the hard-failure result of a non-2xx, non-409 reply.
// Callers match it with errors.As to read the status.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// PostJSON sends a POST with a JSON body to path (relative to the base
// URL) and decodes the JSON reply. Transport failures surface as
// HTTP-001 errors; any HTTP status comes back in the Response for the
// caller to branch on.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHTTPRequest, "marshal request body", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHTTPRequest, "create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHTTPRequest, fmt.Sprintf("POST %s", path), err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHTTPDecode, "read response body", err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Raw:    raw,
	}

	// Non-JSON bodies are legitimate on error statuses; keep the raw
	// bytes and leave Body nil.
	var decoded map[string]any
	if len(raw) > 0 && json.Unmarshal(raw, &decoded) == nil {
		resp.Body = decoded
	}

	return resp, nil
}
