package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediashelf/mediashelf/internal/apperr"
)

// TokenSource fetches and caches a Twitch client-credentials token.
// The mutex guards only the cached value. Concurrent callers that find the
// token stale may each refresh it; the exchange is idempotent so the extra
// requests are harmless.
type TokenSource struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string
	buffer       time.Duration
	logger       zerolog.Logger
	now          func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// NewTokenSource creates a token source. A token is only used while more
// than buffer remains before its expiry.
func NewTokenSource(httpClient *http.Client, authURL, clientID, clientSecret string, buffer time.Duration, logger zerolog.Logger) *TokenSource {
	return &TokenSource{
		httpClient:   httpClient,
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		buffer:       buffer,
		logger:       logger,
		now:          time.Now,
	}
}

// Token returns a cached token, refreshing it when missing or near expiry.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiresAt := s.token, s.expiresAt
	s.mu.RUnlock()

	if token != "" && s.now().Add(s.buffer).Before(expiresAt) {
		return token, nil
	}
	return s.Refresh(ctx)
}

// Refresh exchanges the client credentials for a new token.
func (s *TokenSource) Refresh(ctx context.Context) (string, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return "", apperr.New(apperr.KindUnavailable, "game search is not configured")
	}

	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	requestedAt := s.now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.Invalidate()
		return "", apperr.Wrap(apperr.KindUpstreamTransport, err, "igdb token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.Invalidate()
		s.logger.Error().Int("status", resp.StatusCode).Msg("IGDB authentication failed")
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", apperr.New(apperr.KindUpstreamAuth, "igdb rejected client credentials (status %d)", resp.StatusCode)
		}
		return "", apperr.FromUpstreamStatus("igdb auth", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		s.Invalidate()
		return "", apperr.Wrap(apperr.KindUpstreamTransport, err, "failed to decode igdb token response")
	}
	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		s.Invalidate()
		return "", apperr.New(apperr.KindUpstreamAuth, "igdb token response missing access token or expiry")
	}

	expiresAt := requestedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)

	s.mu.Lock()
	s.token = tr.AccessToken
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.logger.Debug().Time("expiresAt", expiresAt).Msg("Fetched new IGDB access token")

	return tr.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

// ClientID returns the Twitch client id sent with every IGDB request.
func (s *TokenSource) ClientID() string {
	return s.clientID
}
