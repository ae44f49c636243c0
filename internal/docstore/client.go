// Package docstore reads and rewrites the site's JSON document held in a
// hosted JSON bin (JSONBin v3 API). The store has no partial-write or
// conditional-write API: every update replaces the whole document.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the JSONBin v3 API root.
const DefaultBaseURL = "https://api.jsonbin.io/v3"

// ErrNotConfigured is returned by every call on a client without a bin ID or key.
var ErrNotConfigured = errors.New("document store not configured")

// maxErrorBody bounds how much of an error response is echoed back.
const maxErrorBody = 512

// Client talks to a single JSON bin.
type Client struct {
	httpClient *http.Client
	baseURL    string
	binID      string
	apiKey     string
}

// NewClient creates a document store client. An empty baseURL uses
// DefaultBaseURL. Missing binID or apiKey leave the client unconfigured.
func NewClient(baseURL, binID, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		binID:      binID,
		apiKey:     apiKey,
	}
}

// Configured reports whether the client has credentials to reach the store.
func (c *Client) Configured() bool {
	return c != nil && c.binID != "" && c.apiKey != ""
}

// Get fetches the latest version of the document. An empty bin yields a
// document with empty collections.
func (c *Client) Get(ctx context.Context) (Document, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/b/"+c.binID+"/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Bin-Meta", "false")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return NewDocument(), nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

// Put replaces the stored document with doc.
func (c *Client) Put(ctx context.Context, doc Document) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/b/"+c.binID, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

// do sends req with credentials and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("X-Master-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing document store response", "error", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("document store returned %d: %s", resp.StatusCode, snippet)
	}

	return body, nil
}
