package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tenderops/console-gateway/internal/apierr"
	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/session"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// refreshSession exchanges the stored refresh credential for a new access
// credential and persists both. A missing refresh credential fails
// immediately; the coordinator propagates that to every waiting caller.
func (c *Client) refreshSession(ctx context.Context) error {
	refreshToken, ok := c.store.Get(credentials.RefreshToken)
	if !ok || refreshToken == "" {
		return session.ErrNoRefreshCredential
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/user/refresh", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.FromTransport(err)
	}
	if resp.StatusCode != http.StatusOK {
		return apierr.FromResponse(resp.StatusCode, data)
	}

	var tokens refreshResponse
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("refresh response is missing access_token")
	}

	c.store.Set(credentials.AccessToken, tokens.AccessToken, credentials.Options{})
	if tokens.RefreshToken != "" {
		c.store.Set(credentials.RefreshToken, tokens.RefreshToken, credentials.Options{})
	}
	return nil
}
