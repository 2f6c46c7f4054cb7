// Package backend talks to the CRM backend API that owns every entity collection.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/talentcrm/internal/observability"
)

const (
	kindEntities = "entities"
	kindNotes    = "notes"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// StatusError represents a non-successful backend response.
type StatusError struct {
	Status int
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("backend %s returned %d %s", e.URL, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ErrUnexpectedPayload is returned when a list response is not JSON.
var ErrUnexpectedPayload = errors.New("unexpected backend payload")

// Client issues uncached, caller-authenticated reads against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. Every request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListEntities fetches GET /api/{endpoint} and returns the array under responseKey.
func (c *Client) ListEntities(ctx context.Context, token, endpoint, responseKey string) ([]map[string]any, error) {
	path := "/api/" + strings.Trim(endpoint, "/")
	return c.fetchList(ctx, token, path, responseKey, kindEntities)
}

// ListNotes fetches GET /api/{endpoint}/{id}/notes.
func (c *Client) ListNotes(ctx context.Context, token, endpoint, entityID string) ([]map[string]any, error) {
	path := fmt.Sprintf("/api/%s/%s/notes", strings.Trim(endpoint, "/"), url.PathEscape(entityID))
	return c.fetchList(ctx, token, path, "notes", kindNotes)
}

func (c *Client) fetchList(ctx context.Context, token, path, key, kind string) (items []map[string]any, err error) {
	start := time.Now()
	defer func() {
		recordUpstream(kind, err, time.Since(start))
	}()

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Status: resp.StatusCode, URL: target, Body: strings.TrimSpace(string(body))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrUnexpectedPayload, target, err)
	}
	return extractList(payload, key), nil
}

// extractList pulls the record array out of a list response. The backend
// normally wraps it under key; a bare array or a "data" array are accepted
// too. A missing array yields an empty list.
func extractList(payload any, key string) []map[string]any {
	var raw []any
	switch v := payload.(type) {
	case []any:
		raw = v
	case map[string]any:
		if arr, ok := v[key].([]any); ok {
			raw = arr
		} else if arr, ok := v["data"].([]any); ok {
			raw = arr
		}
	}

	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
