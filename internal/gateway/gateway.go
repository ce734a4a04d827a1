// Package gateway is the edge proxy in front of the console backends. It
// terminates the session cookie, forwards API calls to the auth, data and
// recording services and normalizes their failures so browser clients see
// a stable error shape.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/upstream"
)

// Config carries the session-cookie policy and the login deadline.
type Config struct {
	// LoginTimeout caps the auth backend call on login; exceeding it
	// yields 504 without setting a cookie.
	LoginTimeout time.Duration
	// CookieName is the http-only session cookie the gateway reads and
	// writes. AccessCookieName and RefreshCookieName are the
	// client-managed slots; the gateway never sets them but logout
	// expires them too.
	CookieName        string
	AccessCookieName  string
	RefreshCookieName string
	CookieTTL         time.Duration
	// CookieDomain widens logout clears to the parent domain when set.
	CookieDomain string
	CookieSecure bool
}

// Backends groups the forwarders for the services behind the gateway.
type Backends struct {
	Auth      *upstream.Forwarder
	Data      *upstream.Forwarder
	Recording *upstream.Forwarder
}

type Gateway struct {
	cfg      Config
	backends Backends
	logger   zerolog.Logger
}

func New(cfg Config, backends Backends, logger zerolog.Logger) *Gateway {
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 10 * time.Second
	}
	if cfg.CookieTTL <= 0 {
		cfg.CookieTTL = 30 * time.Minute
	}
	if cfg.CookieName == "" {
		cfg.CookieName = credentials.SessionToken
	}
	if cfg.AccessCookieName == "" {
		cfg.AccessCookieName = credentials.AccessToken
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = credentials.RefreshToken
	}
	return &Gateway{cfg: cfg, backends: backends, logger: logger}
}

// Router builds the HTTP handler with the full route surface.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(g.logger))

	r.Get("/health", g.handleHealth)

	r.Post("/api/login", g.handleLogin)
	r.Post("/api/user/logout", g.handleLogout)
	r.Get("/api/user/me", g.handleMe)
	r.Get("/api/auctions", g.handleAuctions)
	r.Get("/api/auctions/{slug}", g.handleAuction)
	r.Get("/api/analytics", g.handleAnalytics)
	r.Get("/api/recordings/export/{slug}", g.handleRecordingExport)
	r.Get("/api/tech_protocol/export/{slug}", g.handleTechProtocolExport)

	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
