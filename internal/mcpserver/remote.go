package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPGraphControl implements GraphControl against the daemon's HTTP API.
// The MCP process does not own the rendering surface; the daemon does.
type HTTPGraphControl struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTPGraphControl targets the daemon at base (e.g. http://localhost:8080).
func NewHTTPGraphControl(base, token string) *HTTPGraphControl {
	return &HTTPGraphControl{
		base:   base,
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// ShowGraph asks the daemon to show or focus the graph surface.
func (c *HTTPGraphControl) ShowGraph(ctx context.Context) (bool, error) {
	var resp struct {
		Open bool `json:"open"`
	}
	if err := c.post(ctx, "/api/graph/show", nil, &resp); err != nil {
		return false, err
	}
	return resp.Open, nil
}

// NotifyActive reports the editor's newly active document.
func (c *HTTPGraphControl) NotifyActive(ctx context.Context, path string) error {
	return c.post(ctx, "/api/editor/active", map[string]string{"path": path}, nil)
}

// NotifySaved reports a just-saved document.
func (c *HTTPGraphControl) NotifySaved(ctx context.Context, path string) error {
	return c.post(ctx, "/api/editor/saved", map[string]string{"path": path}, nil)
}

func (c *HTTPGraphControl) post(ctx context.Context, path string, body any, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("mcpserver: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &payload)
	if err != nil {
		return fmt.Errorf("mcpserver: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mcpserver: daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mcpserver: daemon returned HTTP %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("mcpserver: decode response: %w", err)
		}
	}
	return nil
}
