// Package console implements the typed operations of the admin console on
// top of the authenticated request client: session lifecycle, auction
// listings, analytics reports and export downloads.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenderops/console-gateway/internal/client"
	"github.com/tenderops/console-gateway/internal/credentials"
)

// Console drives the admin API for one operator session.
type Console struct {
	api          *client.Client
	recordingURL string
	logger       zerolog.Logger
}

// Config carries the backend endpoints the console talks to.
type Config struct {
	// RecordingBaseURL hosts the recording artifact listings; empty means
	// the data backend serves them too.
	RecordingBaseURL string
}

func New(api *client.Client, cfg Config, logger zerolog.Logger) *Console {
	return &Console{
		api:          api,
		recordingURL: strings.TrimRight(cfg.RecordingBaseURL, "/"),
		logger:       logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates against the auth backend and stores the returned
// token pair. The call goes through the client unauthenticated; a stale
// stored credential is ignored by the backend.
func (c *Console) Login(ctx context.Context, email, password string) error {
	data, err := c.api.DoOnce(ctx, http.MethodPost, c.api.AuthURL()+"/user/login",
		loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	var tokens loginResponse
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("login response is missing access_token")
	}
	store := c.api.Store()
	store.Set(credentials.AccessToken, tokens.AccessToken, credentials.Options{})
	if tokens.RefreshToken != "" {
		store.Set(credentials.RefreshToken, tokens.RefreshToken, credentials.Options{})
	}
	c.logger.Info().Str("email", email).Msg("Logged in")
	return nil
}

// Logout tells the backend to drop the session, then clears every stored
// credential. The backend call is best-effort: logout succeeds locally even
// when the backend is unreachable.
func (c *Console) Logout(ctx context.Context) error {
	if err := c.api.Post(ctx, c.api.AuthURL()+"/user/logout", nil, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}
	c.api.Store().ClearAll()
	return nil
}

// Me returns the authenticated operator's profile.
func (c *Console) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.api.Get(ctx, c.api.AuthURL()+"/user/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Auctions lists auction chats matching the given filters.
func (c *Console) Auctions(ctx context.Context, params AuctionListParams) (*AuctionPage, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.EventType != "" {
		query.Set("event_type", params.EventType)
	}
	if params.Region != "" {
		query.Set("region", params.Region)
	}

	var page AuctionPage
	if err := c.api.Get(ctx, "/admin/auction-chats", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AuctionDetail is the full view of one auction chat.
type AuctionDetail struct {
	Auction
	State string `json:"state"`
	Lots  []Lot  `json:"lots"`
}

// Auction fetches one auction chat by slug. The backend wraps the payload
// in an auction_chat_info envelope on some deployments; both shapes are
// accepted.
func (c *Console) Auction(ctx context.Context, slug string, query url.Values) (*AuctionDetail, error) {
	data, err := c.api.Do(ctx, http.MethodGet, "/admin/auction-chats/"+url.PathEscape(slug), query, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		AuctionChatInfo json.RawMessage `json:"auction_chat_info"`
	}
	payload := data
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.AuctionChatInfo) > 0 {
		payload = envelope.AuctionChatInfo
	}

	var detail AuctionDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode auction detail: %w", err)
	}
	return &detail, nil
}

// AnalyticsParams select the reporting window. Aggregation is one of
// day, week, month.
type AnalyticsParams struct {
	Aggregation string
	StartDate   string
	EndDate     string
}

const analyticsDateLayout = "2006-01-02"

// Analytics fetches the tender summary report. An inverted date range is
// rejected locally without touching the backend.
func (c *Console) Analytics(ctx context.Context, params AnalyticsParams) (*AnalyticsData, error) {
	if params.StartDate != "" && params.EndDate != "" {
		start, err := time.Parse(analyticsDateLayout, params.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date %q: %w", params.StartDate, err)
		}
		end, err := time.Parse(analyticsDateLayout, params.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date %q: %w", params.EndDate, err)
		}
		if start.After(end) {
			return nil, fmt.Errorf("start_date %s is after end_date %s", params.StartDate, params.EndDate)
		}
	}

	query := url.Values{}
	if params.Aggregation != "" {
		query.Set("aggregation", params.Aggregation)
	}
	if params.StartDate != "" {
		query.Set("start_date", params.StartDate)
	}
	if params.EndDate != "" {
		query.Set("end_date", params.EndDate)
	}

	var report AnalyticsData
	if err := c.api.Get(ctx, "/admin/reports/summary", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RecordingExports lists the recording artifacts of one auction chat from
// the recording backend.
func (c *Console) RecordingExports(ctx context.Context, slug string) ([]RecordingArtifact, error) {
	path := "/recordings/chat/" + url.PathEscape(slug)
	if c.recordingURL != "" {
		path = c.recordingURL + path
	}

	data, err := c.api.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Recordings []RecordingArtifact `json:"recordings"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode recordings list: %w", err)
	}
	return wrapper.Recordings, nil
}

// TechProtocolExport downloads the technical-protocol document of one
// auction chat. The filename is taken from Content-Disposition, falling
// back to "download" when the header is absent or unparseable.
func (c *Console) TechProtocolExport(ctx context.Context, slug string) (*Attachment, error) {
	query := url.Values{}
	query.Set("chat_id", slug)

	data, header, err := c.api.Download(ctx, http.MethodPost, "/export/tech_protocol", query)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    FilenameFromDisposition(header.Get("Content-Disposition")),
		ContentType: header.Get("Content-Type"),
		Data:        data,
	}, nil
}
