// Package client implements the authenticated request client: it attaches
// the stored bearer credential to every call, recovers from 401/403 by
// coordinating a single credential refresh, and retries the original call
// within a fixed budget.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenderops/console-gateway/internal/apierr"
	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/session"
)

// DefaultMaxRetries bounds refresh-and-retry cycles per call.
const DefaultMaxRetries = 3

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries the client's endpoints and budgets.
type Config struct {
	// BaseURL is the data backend all relative paths resolve against.
	BaseURL string
	// AuthBaseURL hosts /user/login, /user/logout and /user/refresh.
	AuthBaseURL string
	Timeout     time.Duration
	MaxRetries  int
}

type Client struct {
	baseURL    string
	authURL    string
	httpClient HTTPClient
	store      credentials.Store
	coord      *session.Coordinator
	logger     zerolog.Logger
	maxRetries int
}

func New(cfg Config, store credentials.Store, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = cfg.BaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authURL:    strings.TrimRight(cfg.AuthBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
	}
	c.coord = session.NewCoordinator(c.refreshSession, logger)
	return c
}

// Store exposes the credential store backing this client.
func (c *Client) Store() credentials.Store { return c.store }

// AuthURL is the base URL of the auth backend, without a trailing slash.
func (c *Client) AuthURL() string { return c.authURL }

// Do performs one authenticated call. On 401/403 it waits for a refresh
// (joining an in-flight one when present) and retries, at most maxRetries
// times; every other failure is terminal on first sight.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	data, _, err := c.do(ctx, method, path, query, body)
	return data, err
}

// DoOnce performs one call without the refresh-and-retry loop. Login and
// other pre-session calls use it so a 401 surfaces as-is.
func (c *Client) DoOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	data, _, err := c.send(ctx, method, path, nil, payload)
	return data, err
}

// Download is Do for binary payloads: it additionally returns the response
// headers so callers can recover content type and attachment filename.
func (c *Client) Download(ctx context.Context, method, path string, query url.Values) ([]byte, http.Header, error) {
	return c.do(ctx, method, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		data, header, err := c.send(ctx, method, path, query, payload)
		if err == nil {
			return data, header, nil
		}
		if !apierr.IsAuthFailure(err) {
			return nil, nil, err
		}
		if attempt >= c.maxRetries {
			c.logger.Warn().
				Str("method", method).
				Str("path", path).
				Int("attempts", attempt+1).
				Msg("Auth retry budget exhausted, giving up")
			return nil, nil, err
		}

		if refreshErr := c.coord.Do(ctx); refreshErr != nil {
			// A dead refresh credential means the session is over; clear
			// the slots so the caller lands back at login.
			c.store.ClearAll()
			return nil, nil, refreshErr
		}
	}
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, http.Header, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredential(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apierr.FromTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, apierr.FromResponse(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func (c *Client) attachCredential(req *http.Request) {
	token, ok := c.store.Get(credentials.AccessToken)
	if !ok {
		return
	}
	req.Header.Set("Authorization", "Bearer "+bareToken(token))
}

// bareToken strips an accidental "Bearer " prefix from a stored value.
func bareToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// Get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// Post performs an authenticated POST and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	data, err := c.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// Put performs an authenticated PUT and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	data, err := c.Do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// Patch performs an authenticated PATCH and decodes the JSON response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	data, err := c.Do(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// Delete performs an authenticated DELETE and decodes the JSON response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	data, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
