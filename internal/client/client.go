// Package client talks to the schema persistence service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apivengers/internal/store"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is makes 404 responses match store.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.Status == http.StatusNotFound
}

// Client is a persistence service client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the service at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("NewRequest() failed: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

type schemaBody struct {
	Name           string `json:"name"`
	MongooseSchema string `json:"mongooseSchema"`
}

// SaveSchema creates a new record and returns it with its id. The service
// rejects an empty name or schema text with a 400.
func (c *Client) SaveSchema(ctx context.Context, name, mongooseSchema string) (*store.Schema, error) {
	var out struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/save-schema", schemaBody{name, mongooseSchema}, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("save schema: response carried no id")
	}
	return &store.Schema{ID: out.ID, Name: name, MongooseSchema: mongooseSchema}, nil
}

// ListSchemas returns every saved schema, newest first.
func (c *Client) ListSchemas(ctx context.Context) ([]*store.Schema, error) {
	out := []*store.Schema{}
	if err := c.do(ctx, http.MethodGet, "/api/schemas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSchema(ctx context.Context, id string) (*store.Schema, error) {
	var out store.Schema
	if err := c.do(ctx, http.MethodGet, "/api/schema/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSchema(ctx context.Context, id, name, mongooseSchema string) (*store.Schema, error) {
	var out struct {
		Message string       `json:"message"`
		Schema  store.Schema `json:"schema"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/schema/"+escape(id), schemaBody{name, mongooseSchema}, &out); err != nil {
		return nil, err
	}
	return &out.Schema, nil
}

func (c *Client) DeleteSchema(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/schema/"+escape(id), nil, nil)
}

// SaveEndpoints replaces every endpoint saved for schemaName and returns
// the stored count.
func (c *Client) SaveEndpoints(ctx context.Context, schemaName string, endpoints []store.Endpoint) (int, error) {
	in := struct {
		SchemaName string           `json:"schemaName"`
		Endpoints  []store.Endpoint `json:"endpoints"`
	}{schemaName, endpoints}
	var out struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/endpoints", in, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ListEndpoints(ctx context.Context, schemaName string) ([]*store.Endpoint, error) {
	out := []*store.Endpoint{}
	if err := c.do(ctx, http.MethodGet, "/api/endpoints/"+escape(schemaName), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateEndpoint(ctx context.Context, id string, patch store.EndpointPatch) (*store.Endpoint, error) {
	var out store.Endpoint
	if err := c.do(ctx, http.MethodPatch, "/api/endpoints/"+escape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleEndpoint(ctx context.Context, id string) (*store.Endpoint, error) {
	var out store.Endpoint
	if err := c.do(ctx, http.MethodPut, "/api/endpoints/"+escape(id)+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEndpoint(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/endpoints/"+escape(id), nil, nil)
}

func (c *Client) DeleteEndpointsForSchema(ctx context.Context, schemaName string) (int64, error) {
	var out struct {
		Message      string `json:"message"`
		DeletedCount int64  `json:"deletedCount"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/endpoints/schema/"+escape(schemaName), nil, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}
