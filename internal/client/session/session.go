// Package session keeps signed-in users of the web client.  The browser
// only holds the session id; tokens and claims stay server-side.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Session is either a pending login (State/Nonce set, no tokens) or a
// signed-in user.
type Session struct {
	ID       string `json:"id"`
	State    string `json:"state,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
	ReturnTo string `json:"return_to,omitempty"`

	IDToken      string         `json:"id_token,omitempty"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Claims       map[string]any `json:"claims,omitempty"`
}

// New starts a session with a random 256-bit id.
func New() *Session {
	b := make([]byte, 32)
	_, _ = rand.Read(b) // never fails since Go 1.24
	return &Session{ID: base64.RawURLEncoding.EncodeToString(b)}
}

// Authenticated reports whether the login completed.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}

// Name picks the friendliest identity claim available.
func (s *Session) Name() string {
	if s == nil {
		return ""
	}
	for _, k := range []string{"name", "given_name", "preferred_username", "email", "sub"} {
		if v, ok := s.Claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by NewContext, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
