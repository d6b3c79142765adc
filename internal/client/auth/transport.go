package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/iliyamo/rmdb/internal/client/session"
)

// RefreshThreshold is how close to expiry an access token gets refreshed.
const RefreshThreshold = 60 * time.Second

// TokenRefresher swaps a session's refresh token for a new access token
// once the current one is about to expire.
type TokenRefresher struct {
	oauth *oauth2.Config
	store session.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewTokenRefresher(cfg *oauth2.Config, store session.Store, log *slog.Logger) *TokenRefresher {
	if log == nil {
		log = slog.Default()
	}
	return &TokenRefresher{oauth: cfg, store: store, log: log, now: time.Now}
}

// AccessToken returns the token to relay for s, refreshing it first when
// it expires within RefreshThreshold.  On refresh failure the current
// token is returned unchanged.
func (r *TokenRefresher) AccessToken(ctx context.Context, s *session.Session) string {
	if s.RefreshToken == "" || s.ExpiresAt.IsZero() || s.ExpiresAt.Sub(r.now()) > RefreshThreshold {
		return s.AccessToken
	}
	// only the refresh token is passed so oauth2 cannot decide the old
	// access token is still good enough
	tok, err := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.RefreshToken}).Token()
	if err != nil {
		r.log.Warn("token refresh failed", "session", s.ID, "error", err)
		return s.AccessToken
	}

	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.ExpiresAt = tok.Expiry
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		s.IDToken = id
	}
	if err := r.store.Save(ctx, s); err != nil {
		r.log.Warn("save refreshed session", "session", s.ID, "error", err)
	}
	return s.AccessToken
}

// BearerTransport adds the signed-in user's access token to outgoing API
// requests.  Requests without a session in their context pass through.
type BearerTransport struct {
	Base      http.RoundTripper
	Refresher *TokenRefresher // optional
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	s := session.FromContext(req.Context())
	if !s.Authenticated() {
		return base.RoundTrip(req)
	}
	token := s.AccessToken
	if t.Refresher != nil {
		token = t.Refresher.AccessToken(req.Context(), s)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(r)
}
