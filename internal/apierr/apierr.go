// Package apierr defines the tagged error type used for every upstream
// failure. Callers branch on Kind and Status instead of probing an opaque
// error's shape.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags the failure class of an upstream call.
type Kind int

const (
	// KindTransport is a network-level failure with no HTTP response.
	KindTransport Kind = iota
	// KindHTTP is a non-2xx HTTP response; Status and Body are set.
	KindHTTP
	// KindTimeout is a deadline expiry, including the login hard timeout.
	KindTimeout
	// KindCanceled is a caller-side cancellation.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error shape surfaced by the upstream and client
// layers.
type Error struct {
	Kind   Kind
	Status int
	Body   []byte
	// Message is the human-readable summary: the backend's own message for
	// HTTP errors when it sent one, the transport error text otherwise.
	Message string

	cause error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// FromResponse builds an HTTP-kind error from a non-2xx upstream response.
func FromResponse(status int, body []byte) *Error {
	msg := MessageFromBody(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: KindHTTP, Status: status, Body: body, Message: msg}
}

// FromTransport classifies a transport-level failure, distinguishing
// timeouts and cancellations from plain network errors.
func FromTransport(err error) *Error {
	kind := KindTransport
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	}
	return &Error{Kind: kind, Message: err.Error(), cause: err}
}

// MessageFromBody extracts a message from the common JSON error layouts
// ({"message": ...} or {"detail": ...}); returns "" when none is present.
func MessageFromBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// StatusOf returns the HTTP status of err, or 0 for non-HTTP errors.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTP {
		return apiErr.Status
	}
	return 0
}

// IsAuthFailure reports whether err is an HTTP 401 or 403 response.
func IsAuthFailure(err error) bool {
	status := StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsTimeout reports whether err is a deadline expiry.
func IsTimeout(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTimeout
}

// TruncateBody trims body text for logging.
func TruncateBody(body []byte, max int) string {
	if max <= 0 {
		max = 512
	}
	raw := strings.TrimSpace(string(body))
	if len(raw) <= max {
		return raw
	}
	return raw[:max] + "…(truncated)"
}
