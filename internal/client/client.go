// Package client provides an HTTP client for the homefront API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/homefront/internal/auth"
	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/lead"
	"github.com/evcraddock/homefront/internal/listing"
)

// Client is an HTTP client for the homefront API.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// New creates a new API client. adminToken is sent on every request.
func New(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListListings returns active listings in display order.
func (c *Client) ListListings(ctx context.Context) ([]*listing.Listing, error) {
	var resp struct {
		Listings []*listing.Listing `json:"listings"`
	}
	if err := c.get(ctx, "/listings", &resp); err != nil {
		return nil, err
	}
	return resp.Listings, nil
}

// UpsertListing sends a raw listing payload and returns the stored ID.
func (c *Client) UpsertListing(ctx context.Context, payload json.RawMessage) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.post(ctx, "/listings", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// ListImports returns the import queue.
func (c *Client) ListImports(ctx context.Context) ([]importqueue.Entry, error) {
	var resp struct {
		Imports []importqueue.Entry `json:"imports"`
	}
	if err := c.get(ctx, "/import/list", &resp); err != nil {
		return nil, err
	}
	return resp.Imports, nil
}

// SubmitDraft queues a draft the way the browser extension does.
func (c *Client) SubmitDraft(ctx context.Context, draft json.RawMessage) (*importqueue.Receipt, error) {
	var receipt importqueue.Receipt
	if err := c.post(ctx, "/import/receive", draft, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// PromoteImport turns a queued draft into a listing and returns its ID.
func (c *Client) PromoteImport(ctx context.Context, id string) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.post(ctx, "/import/promote", map[string]string{"id": id}, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// ListLeads returns captured leads, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]*lead.Lead, error) {
	var resp struct {
		Leads []*lead.Lead `json:"leads"`
	}
	if err := c.get(ctx, "/leads", &resp); err != nil {
		return nil, err
	}
	return resp.Leads, nil
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
// A json.RawMessage body is sent as is.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	data, ok := body.(json.RawMessage)
	if !ok {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// do executes an HTTP request with the admin token header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.adminToken != "" {
		req.Header.Set(auth.HeaderAdminToken, c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
