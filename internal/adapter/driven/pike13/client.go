// Package pike13 implements the RemoteAPI port over the tenant's desk REST API.
package pike13

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
	"github.com/ericfisherdev/pike13bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RemoteAPI = (*Client)(nil)

// ErrMissingBaseURL is returned by NewClient when no tenant base URL is given.
// It is raised before any request is built.
var ErrMissingBaseURL = errors.New("pike13: tenant base URL is not configured")

const (
	customFieldsPath = "/api/v2/desk/custom_fields"
	peoplePath       = "/api/v2/desk/people/"
	locationsPath    = "/api/v2/desk/locations"
)

// Client implements the driven.RemoteAPI port. It has no retry, rate limiting or
// timeout of its own; callers bound requests through their context.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cached  *http.Client // Used for location listings only.
}

// NewClient creates a Client for the tenant at baseURL with the production
// transport stack (see NewTransport).
func NewClient(baseURL string) (*Client, error) {
	base, err := NewTransport()
	if err != nil {
		return nil, err
	}
	return newClient(baseURL, &http.Client{Transport: base}, &http.Client{Transport: NewCachedTransport(base)})
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Location listings bypass the cache. Intended for tests against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	return newClient(baseURL, httpClient, httpClient)
}

func newClient(baseURL string, httpClient, cachedClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: scheme and host are required", baseURL)
	}
	return &Client{baseURL: u, http: httpClient, cached: cachedClient}, nil
}

// Get issues an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path, token string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, c.http, http.MethodGet, path, token, query, nil)
}

// Patch issues an authenticated PATCH with body encoded as JSON and returns the raw JSON body.
func (c *Client) Patch(ctx context.Context, path, token string, body any) (json.RawMessage, error) {
	return c.do(ctx, c.http, http.MethodPatch, path, token, nil, body)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path, token string, query url.Values, body any) (json.RawMessage, error) {
	target := *c.baseURL
	target.Path = c.baseURL.Path + path
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	slog.Debug("pike13 api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get("X-From-Cache") == "1",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// FetchCustomFields returns all custom field definitions in remote order.
func (c *Client) FetchCustomFields(ctx context.Context, token string) ([]model.CustomFieldDefinition, error) {
	raw, err := c.Get(ctx, customFieldsPath, token, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching custom fields: %w", err)
	}

	var envelope struct {
		CustomFields []customFieldJSON `json:"custom_fields"`
	}
	if err := decode(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding custom fields: %w", err)
	}

	fields := make([]model.CustomFieldDefinition, 0, len(envelope.CustomFields))
	for _, f := range envelope.CustomFields {
		fields = append(fields, f.toModel())
	}
	return fields, nil
}

// FetchPerson returns a fresh snapshot of the person record.
func (c *Client) FetchPerson(ctx context.Context, token, personID string) (*model.Person, error) {
	raw, err := c.Get(ctx, peoplePath+url.PathEscape(personID), token, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching person %s: %w", personID, err)
	}

	var envelope struct {
		People []personJSON `json:"people"`
		Person *personJSON  `json:"person"`
	}
	if err := decode(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding person %s: %w", personID, err)
	}

	switch {
	case len(envelope.People) > 0:
		return envelope.People[0].toModel(), nil
	case envelope.Person != nil:
		return envelope.Person.toModel(), nil
	default:
		return nil, fmt.Errorf("fetching person %s: response contained no person", personID)
	}
}

// UpdatePerson sends PATCH people/{id} with {"person": attrs}.
func (c *Client) UpdatePerson(ctx context.Context, token, personID string, attrs map[string]any) error {
	body := map[string]any{"person": attrs}
	if _, err := c.Patch(ctx, peoplePath+url.PathEscape(personID), token, body); err != nil {
		return fmt.Errorf("updating person %s: %w", personID, err)
	}
	return nil
}

// FetchLocations returns the tenant's locations. Responses may be served from
// the conditional-request cache when the remote sends validators.
func (c *Client) FetchLocations(ctx context.Context, token string) ([]model.Location, error) {
	raw, err := c.do(ctx, c.cached, http.MethodGet, locationsPath, token, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching locations: %w", err)
	}

	var envelope struct {
		Locations []locationJSON `json:"locations"`
	}
	if err := decode(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}

	locations := make([]model.Location, 0, len(envelope.Locations))
	for _, l := range envelope.Locations {
		locations = append(locations, model.Location{
			ID:       int64(l.ID),
			Name:     l.Name,
			Address:  l.Address,
			TimeZone: l.TimeZone,
			Hidden:   l.Hidden,
		})
	}
	return locations, nil
}

func decode(raw json.RawMessage, v any) error {
	if raw == nil {
		return errors.New("empty response body")
	}
	return json.Unmarshal(raw, v)
}
