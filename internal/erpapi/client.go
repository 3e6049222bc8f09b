// Package erpapi is a typed client for the record store's REST API.
package erpapi

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
)

const maxErrorBody = 64 << 10

// Authorizer supplies the bearer credential and is revoked on a 401.
type Authorizer interface {
	Credential() (string, error)
	Revoke(reason string)
}

// Client talks to the record store. It is safe for concurrent use; scope it to
// a session with With.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client for the API rooted at baseURL, e.g.
// "https://erp.example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("erpapi: base url required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("erpapi: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("erpapi: base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// With returns a connection that authenticates with auth.
func (c *Client) With(auth Authorizer) *Conn {
	return &Conn{client: c, auth: auth}
}

// Conn is a Client bound to one session's credential.
type Conn struct {
	client *Client
	auth   Authorizer
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Conn) get(ctx context.Context, path string, out any) error {
	return c.client.do(ctx, c.auth, http.MethodGet, path, nil, out)
}

func (c *Conn) post(ctx context.Context, path string, body, out any) error {
	return c.client.do(ctx, c.auth, http.MethodPost, path, body, out)
}

func (c *Conn) put(ctx context.Context, path string, body, out any) error {
	return c.client.do(ctx, c.auth, http.MethodPut, path, body, out)
}

func (c *Conn) delete(ctx context.Context, path string) error {
	return c.client.do(ctx, c.auth, http.MethodDelete, path, nil, nil)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) do(ctx context.Context, auth Authorizer, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erpapi: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("erpapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		token, err := auth.Credential()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: decode %s %s: %v", ErrTransport, method, path, err)
		}
		return nil
	}

	message := readMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if auth != nil {
			auth.Revoke("credential rejected by record store")
			c.logger.Warn("record store rejected credential", slog.String("method", method), slog.String("path", path))
		}
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return &ValidationError{Status: resp.StatusCode, Message: message}
	default:
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: message}
	}
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
