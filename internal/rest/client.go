// Package rest implements record.Service over HTTP.
//
// The service exposes plain CRUD under /records and a health endpoint at
// /healthz. Errors decode the conventional {"error": {"code", "message"}}
// envelope when present and degrade to the raw status otherwise.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/croplog/croplog/internal/record"
)

// DefaultTimeout bounds any single HTTP request made by the client.
const DefaultTimeout = 15 * time.Second

// Client talks to the remote record service.
type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (for testing).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client's logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create implements record.Service.
func (c *Client) Create(ctx context.Context, fields record.Fields) (record.Record, error) {
	var rec record.Record
	err := c.do(ctx, http.MethodPost, "/records", fields, &rec)
	return rec, err
}

// Update implements record.Service.
func (c *Client) Update(ctx context.Context, id string, partial record.Partial) (record.Record, error) {
	var rec record.Record
	err := c.do(ctx, http.MethodPatch, "/records/"+url.PathEscape(id), partial, &rec)
	return rec, err
}

// Delete implements record.Service.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, nil)
}

// GetAll implements record.Service.
func (c *Client) GetAll(ctx context.Context) ([]record.Record, error) {
	var recs []record.Record
	err := c.do(ctx, http.MethodGet, "/records", nil, &recs)
	return recs, err
}

// GetByID implements record.Service.
func (c *Client) GetByID(ctx context.Context, id string) (record.Record, error) {
	var rec record.Record
	err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(id), nil, &rec)
	return rec, err
}

// Ping reports whether the service answers its health endpoint. Used as
// the connectivity probe; any response, even an error status, means the
// service is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return true
}

// errorEnvelope is the service's error response body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do executes one request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return &record.ServiceError{Message: method + " " + path + " failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, record.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("service rejected request", "method", method, "path", path, "status", resp.StatusCode)
		return c.serviceError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &record.ServiceError{
			StatusCode: resp.StatusCode,
			Message:    "undecodable response body",
			Err:        err,
		}
	}
	return nil
}

// serviceError maps a non-2xx response to a record.ServiceError.
func (c *Client) serviceError(resp *http.Response) error {
	svcErr := &record.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return svcErr
	}
	var env errorEnvelope
	if json.Unmarshal(data, &env) == nil && env.Error.Message != "" {
		svcErr.Code = env.Error.Code
		svcErr.Message = env.Error.Message
	}
	return svcErr
}
