package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponse_ExtractsMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message key", 404, `{"message":"no such auction"}`, "no such auction"},
		{"detail key", 503, `{"detail":"db down"}`, "db down"},
		{"error key", 400, `{"error":"bad slug"}`, "bad slug"},
		{"empty body falls back to status text", 502, ``, "Bad Gateway"},
		{"non-json body falls back to status text", 500, `<html>oops</html>`, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, KindHTTP, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.want, err.Message)
		})
	}
}

func TestFromTransport_ClassifiesContextErrors(t *testing.T) {
	assert.Equal(t, KindTimeout, FromTransport(fmt.Errorf("call: %w", context.DeadlineExceeded)).Kind)
	assert.Equal(t, KindCanceled, FromTransport(fmt.Errorf("call: %w", context.Canceled)).Kind)
	assert.Equal(t, KindTransport, FromTransport(errors.New("connection refused")).Kind)
}

func TestFromTransport_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := FromTransport(cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(FromResponse(http.StatusUnauthorized, nil)))
	assert.True(t, IsAuthFailure(FromResponse(http.StatusForbidden, nil)))
	assert.False(t, IsAuthFailure(FromResponse(http.StatusNotFound, nil)))
	assert.False(t, IsAuthFailure(errors.New("plain")))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 503, StatusOf(FromResponse(503, nil)))
	assert.Equal(t, 0, StatusOf(FromTransport(errors.New("down"))))
	assert.Equal(t, 0, StatusOf(nil))
}
