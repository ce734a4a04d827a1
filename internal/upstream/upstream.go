// Package upstream forwards gateway requests to one backend service. The
// forwarder is deliberately dumb: it attaches the session credential,
// passes the query through and hands the raw status/headers/body back to
// the handler, which owns the error mapping.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tenderops/console-gateway/internal/apierr"
)

// Response is a backend response read into memory.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the backend answered with a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Forwarder sends requests to a single backend.
type Forwarder struct {
	baseURL    string
	httpClient *http.Client
}

func NewForwarder(baseURL string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request describes one forwarded call. Token, Body and ContentType are
// optional.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Token       string
	Body        []byte
	ContentType string
}

// Do forwards the request and reads the backend's answer. Backend error
// statuses are returned as a Response, not an error; only transport
// failures produce an error, classified via apierr.
func (f *Forwarder) Do(ctx context.Context, r Request) (*Response, error) {
	target := f.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
