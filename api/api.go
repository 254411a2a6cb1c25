// Package api is the sync boundary to the map backend: a small JSON
// REST client plus a WebSocket hub broadcasting live map state to
// observers. Saves are optimistic; callers surface failures as
// notifications and never roll local state back.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"oilmap/typedef"
)

// Client talks to the map persistence backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the backend at baseURL (no trailing
// slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListMaps fetches the saved map summaries.
func (c *Client) ListMaps(ctx context.Context) ([]MapSummary, error) {
	var maps []MapSummary
	if err := c.do(ctx, http.MethodGet, "/api/maps/", nil, &maps); err != nil {
		return nil, err
	}
	return maps, nil
}

// CreateMap stores a new map and returns its id.
func (c *Client) CreateMap(ctx context.Context, payload MapPayload) (int, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/api/maps/create/", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateMap overwrites the map record wholesale. Last write wins.
func (c *Client) UpdateMap(ctx context.Context, id int, payload MapPayload) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/maps/%d/update/", id), payload, nil)
}

// DeleteMap removes the stored map.
func (c *Client) DeleteMap(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/maps/%d/delete/", id), nil, nil)
}

// GetMap fetches a full map record and migrates legacy point data: any
// point without a color gets one derived from its old status/owner
// fields.
func (c *Client) GetMap(ctx context.Context, id int) (*MapRecord, error) {
	var rec MapRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/maps/%d/", id), nil, &rec); err != nil {
		return nil, err
	}
	for i := range rec.Data.Points {
		rec.Data.Points[i].MigrateColor()
	}
	return &rec, nil
}

// ExpandTerritories asks the backend to run one expansion step.
func (c *Client) ExpandTerritories(ctx context.Context, id int) (*ExpandResponse, error) {
	var resp ExpandResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/maps/%d/expand/", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResolveBattles submits one result per pending battle point and
// returns the updated point list. Completeness is the caller's job: the
// backend is never sent a partial result set.
func (c *Client) ResolveBattles(ctx context.Context, id int, results map[int]BattleResult) ([]typedef.Point, error) {
	req := resolveRequest{BattleResults: make(map[string]BattleResult, len(results))}
	for index, result := range results {
		req.BattleResults[fmt.Sprintf("%d", index)] = result
	}
	var resp resolveResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/maps/%d/resolve/", id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: backend returned %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
