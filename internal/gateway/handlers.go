package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tenderops/console-gateway/internal/apierr"
	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/upstream"
)

// sessionStore binds a cookie store to the current request, scoped to the
// configured cookie names.
func (g *Gateway) sessionStore(w http.ResponseWriter, r *http.Request) credentials.Store {
	return credentials.NewCookieStore(w, r, g.cfg.CookieDomain,
		g.cfg.CookieName, g.cfg.AccessCookieName, g.cfg.RefreshCookieName)
}

func (g *Gateway) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

type loginUpstreamResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// handleLogin forwards the credentials to the auth backend under a hard
// deadline. On success the backend token moves into an http-only cookie
// and the body is replaced so the credential never reaches the browser's
// JS context.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.LoginTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	resp, err := g.backends.Auth.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        "/user/login",
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		if apierr.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			g.logger.Warn().Err(err).Msg("Auth backend timed out on login")
			writeMessage(w, http.StatusGatewayTimeout, "Auth service timeout")
			return
		}
		g.logger.Error().Err(err).Msg("Auth backend unreachable on login")
		writeTransportError(w)
		return
	}
	if !resp.OK() {
		writeUpstreamResponse(w, resp)
		return
	}

	var tokens loginUpstreamResponse
	if err := json.Unmarshal(resp.Body, &tokens); err != nil || (tokens.AccessToken == "" && tokens.Token == "") {
		g.logger.Error().Msg("Auth backend login response carried no token")
		writeTransportError(w)
		return
	}
	token := tokens.AccessToken
	if token == "" {
		token = tokens.Token
	}

	g.sessionStore(w, r).Set(g.cfg.CookieName, token, credentials.Options{
		MaxAge:         g.cfg.CookieTTL,
		HTTPOnly:       true,
		Secure:         g.cfg.CookieSecure,
		SameSiteStrict: true,
	})
	writeMessage(w, resp.Status, "Authentication successful")
}

// handleLogout is idempotent: the backend call is best-effort and the
// response is always 200 with the cookies cleared.
func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := g.sessionToken(r); token != "" {
		_, err := g.backends.Auth.Do(r.Context(), upstream.Request{
			Method: http.MethodPost,
			Path:   "/user/logout",
			Token:  token,
		})
		if err != nil {
			g.logger.Warn().Err(err).Msg("Auth backend logout failed, clearing session anyway")
		}
	}
	g.sessionStore(w, r).ClearAll()
	writeMessage(w, http.StatusOK, "Logged out")
}

func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	g.forward(w, r, g.backends.Auth, http.MethodGet, "/user/me", nil)
}

func (g *Gateway) handleAuctions(w http.ResponseWriter, r *http.Request) {
	g.forward(w, r, g.backends.Data, http.MethodGet, "/admin/auction-chats", r.URL.Query())
}

func (g *Gateway) handleAuction(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	g.forward(w, r, g.backends.Data, http.MethodGet,
		"/admin/auction-chats/"+url.PathEscape(slug), r.URL.Query())
}

func (g *Gateway) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	g.forward(w, r, g.backends.Data, http.MethodGet, "/admin/reports/summary", r.URL.Query())
}

func (g *Gateway) handleRecordingExport(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	g.forward(w, r, g.backends.Recording, http.MethodGet,
		"/recordings/chat/"+url.PathEscape(slug), nil)
}

// handleTechProtocolExport streams the generated document through,
// keeping the backend's content headers and defaulting the attachment
// name when the backend omits it.
func (g *Gateway) handleTechProtocolExport(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	query := url.Values{}
	query.Set("chat_id", slug)

	resp, err := g.backends.Data.Do(r.Context(), upstream.Request{
		Method: http.MethodPost,
		Path:   "/export/tech_protocol",
		Query:  query,
		Token:  g.sessionToken(r),
	})
	if err != nil {
		g.logger.Error().Err(err).Str("chat_id", slug).Msg("Tech protocol export failed")
		writeTransportError(w)
		return
	}
	if !resp.OK() {
		writeUpstreamResponse(w, resp)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", "protocol_"+slug+".pdf")
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// forward is the common path for read endpoints: attach the session token,
// pass the query through, normalize the outcome.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, backend *upstream.Forwarder, method, path string, query url.Values) {
	resp, err := backend.Do(r.Context(), upstream.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Token:  g.sessionToken(r),
	})
	if err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("Upstream request failed")
		writeTransportError(w)
		return
	}
	if resp.Status >= http.StatusInternalServerError {
		// The detail is logged here and never forwarded.
		g.logger.Warn().
			Str("path", path).
			Int("status", resp.Status).
			Str("body", apierr.TruncateBody(resp.Body, 512)).
			Msg("Upstream returned a server error")
	}
	writeUpstreamResponse(w, resp)
}
