// Package auth signs web client users in through an OpenID Connect provider
// and relays their access token to the catalog API.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/iliyamo/rmdb/internal/client/session"
	"github.com/iliyamo/rmdb/internal/config"
)

// Routes used by the login flow.
const (
	LoginPath    = "/login"
	CallbackPath = "/signin-oidc"
	LogoutPath   = "/logout"
)

// loginTTL bounds how long a started login may take to come back.
const loginTTL = 10 * time.Minute

// Authenticator runs the relying-party side of the login.
type Authenticator struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config

	hybrid      bool
	userInfo    bool
	endSession  string
	postLogout  string
	refreshable bool

	store  session.Store
	cookie config.SessionConfig
	log    *slog.Logger
}

// providerMetadata holds discovery fields go-oidc does not expose directly.
type providerMetadata struct {
	UserInfoEndpoint   string `json:"userinfo_endpoint"`
	EndSessionEndpoint string `json:"end_session_endpoint"`
}

// New discovers the provider at cfg.Authority.  ctx bounds the discovery
// request and is also used for later key set refreshes, so it should
// live as long as the process.
func New(ctx context.Context, cfg config.OIDCConfig, sc config.SessionConfig, store session.Store, log *slog.Logger) (*Authenticator, error) {
	if log == nil {
		log = slog.Default()
	}
	provider, err := oidc.NewProvider(ctx, strings.TrimSuffix(cfg.Authority, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	var meta providerMetadata
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("oidc metadata: %w", err)
	}

	return &Authenticator{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes(cfg.Scopes),
		},
		hybrid:      cfg.Hybrid(),
		userInfo:    meta.UserInfoEndpoint != "",
		endSession:  meta.EndSessionEndpoint,
		postLogout:  cfg.PostLogoutRedirectURL,
		refreshable: cfg.TokenRefresh,
		store:       store,
		cookie:      sc,
		log:         log,
	}, nil
}

// scopes always requests openid and profile, followed by extra without
// duplicates.
func scopes(extra []string) []string {
	out := []string{oidc.ScopeOpenID, "profile"}
	seen := map[string]bool{oidc.ScopeOpenID: true, "profile": true}
	for _, s := range extra {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Register mounts the login, callback and logout routes.  The provider
// posts the callback when the hybrid flow is used, so both verbs are served.
func (a *Authenticator) Register(e *echo.Echo) {
	e.GET(LoginPath, a.Login)
	e.GET(CallbackPath, a.Callback)
	e.POST(CallbackPath, a.Callback)
	e.GET(LogoutPath, a.Logout)
}

// Login starts a challenge and redirects to the provider.
func (a *Authenticator) Login(c echo.Context) error {
	state, err := randomString()
	if err != nil {
		return err
	}
	nonce, err := randomString()
	if err != nil {
		return err
	}
	s := session.New()
	s.State = state
	s.Nonce = nonce
	s.ReturnTo = localPath(c.QueryParam("returnUrl"))
	if err := a.store.Save(c.Request().Context(), s); err != nil {
		return fmt.Errorf("save pending login: %w", err)
	}
	c.SetCookie(a.loginCookie(s.ID, int(loginTTL.Seconds())))

	opts := []oauth2.AuthCodeOption{oidc.Nonce(nonce)}
	if a.hybrid {
		opts = append(opts,
			oauth2.SetAuthURLParam("response_type", "code id_token"),
			oauth2.SetAuthURLParam("response_mode", "form_post"),
		)
	}
	return c.Redirect(http.StatusFound, a.oauth.AuthCodeURL(state, opts...))
}

// Callback completes the login started by Login.
func (a *Authenticator) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	pending, err := a.pendingFrom(c)
	if err != nil || pending.State == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no login in progress")
	}
	c.SetCookie(a.loginCookie("", -1))
	if e := c.FormValue("error"); e != "" {
		_ = a.store.Delete(ctx, pending.ID)
		msg := e
		if d := c.FormValue("error_description"); d != "" {
			msg += ": " + d
		}
		return echo.NewHTTPError(http.StatusUnauthorized, msg)
	}
	if subtle.ConstantTimeCompare([]byte(c.FormValue("state")), []byte(pending.State)) != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "state mismatch")
	}

	code := c.FormValue("code")
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		a.log.Warn("code exchange failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "code exchange failed")
	}
	rawID, _ := tok.Extra("id_token").(string)
	frontChannel := rawID == ""
	if frontChannel {
		rawID = c.FormValue("id_token")
	}
	idToken, err := a.verifier.Verify(ctx, rawID)
	if err != nil {
		a.log.Warn("id token rejected", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid id token")
	}
	if subtle.ConstantTimeCompare([]byte(idToken.Nonce), []byte(pending.Nonce)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "nonce mismatch")
	}
	if frontChannel {
		if err := verifyCodeHash(rawID, idToken, code); err != nil {
			a.log.Warn("id token not bound to code", "sub", idToken.Subject, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid id token")
		}
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return err
	}
	if a.userInfo {
		info, err := a.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
		if err != nil {
			a.log.Warn("userinfo failed; keeping id token claims", "sub", idToken.Subject, "error", err)
		} else {
			extra := map[string]any{}
			if err := info.Claims(&extra); err == nil {
				for k, v := range extra {
					claims[k] = v
				}
			}
		}
	}

	// a fresh id so the pre-login cookie cannot be replayed
	_ = a.store.Delete(ctx, pending.ID)
	s := session.New()
	s.IDToken = rawID
	s.AccessToken = tok.AccessToken
	s.RefreshToken = tok.RefreshToken
	s.ExpiresAt = tok.Expiry
	s.Claims = claims
	if err := a.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.setCookie(c, s.ID)
	a.log.Info("signed in", "sub", idToken.Subject)

	target := pending.ReturnTo
	if target == "" {
		target = "/"
	}
	return c.Redirect(http.StatusFound, target)
}

// Logout forgets the session and ends the provider session when the
// provider advertises an end_session_endpoint.
func (a *Authenticator) Logout(c echo.Context) error {
	target := "/"
	if s, err := a.sessionFrom(c); err == nil {
		_ = a.store.Delete(c.Request().Context(), s.ID)
		if a.endSession != "" {
			q := url.Values{}
			if s.IDToken != "" {
				q.Set("id_token_hint", s.IDToken)
			}
			if a.postLogout != "" {
				q.Set("post_logout_redirect_uri", a.postLogout)
			}
			target = a.endSession
			if len(q) > 0 {
				target += "?" + q.Encode()
			}
		}
	}
	a.clearCookie(c)
	return c.Redirect(http.StatusFound, target)
}

// RequireAuth lets signed-in users through and sends everybody else to the
// login challenge.  The session is attached to the request context so the
// API transport can find the access token.
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := a.sessionFrom(c)
			if err != nil || !s.Authenticated() {
				target := LoginPath
				if c.Request().Method == http.MethodGet {
					target += "?returnUrl=" + url.QueryEscape(c.Request().URL.RequestURI())
				}
				return c.Redirect(http.StatusFound, target)
			}
			c.Set("session", s)
			c.SetRequest(c.Request().WithContext(session.NewContext(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// Refresher returns the token refresher, or nil when refresh is disabled.
func (a *Authenticator) Refresher() *TokenRefresher {
	if !a.refreshable {
		return nil
	}
	return NewTokenRefresher(a.oauth, a.store, a.log)
}

func (a *Authenticator) sessionFrom(c echo.Context) (*session.Session, error) {
	ck, err := c.Cookie(a.cookie.CookieName)
	if err != nil || ck.Value == "" {
		return nil, session.ErrNotFound
	}
	s, err := a.store.Get(c.Request().Context(), ck.Value)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		a.log.Warn("session lookup failed", "error", err)
	}
	return s, err
}

// pendingFrom loads the login started by Login from the correlation cookie.
func (a *Authenticator) pendingFrom(c echo.Context) (*session.Session, error) {
	ck, err := c.Cookie(a.loginCookieName())
	if err != nil || ck.Value == "" {
		return nil, session.ErrNotFound
	}
	return a.store.Get(c.Request().Context(), ck.Value)
}

func (a *Authenticator) setCookie(c echo.Context, id string) {
	c.SetCookie(a.sessionCookie(id, int(a.cookie.TTL.Seconds())))
}

func (a *Authenticator) clearCookie(c echo.Context) {
	c.SetCookie(a.sessionCookie("", -1))
}

// sessionCookie carries the signed-in session.  It is always Lax so that
// no cross-site POST reaches the pages with it.
func (a *Authenticator) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookie.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (a *Authenticator) loginCookieName() string {
	return a.cookie.CookieName + "_login"
}

// loginCookie correlates the callback with the pending login and is only
// sent back to CallbackPath.  The hybrid callback is a cross-site form_post,
// which carries SameSite=None cookies only, and those must be Secure.
func (a *Authenticator) loginCookie(value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     a.loginCookieName(),
		Value:    value,
		Path:     CallbackPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if a.hybrid {
		ck.SameSite = http.SameSiteNoneMode
		ck.Secure = true
	}
	return ck
}

// localPath only accepts same-site absolute paths as return targets.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}

// verifyCodeHash checks the c_hash claim that binds an ID token received
// on the front channel to the authorization code it came with.
func verifyCodeHash(raw string, tok *oidc.IDToken, code string) error {
	var cl struct {
		CodeHash string `json:"c_hash"`
	}
	if err := tok.Claims(&cl); err != nil {
		return err
	}
	if cl.CodeHash == "" {
		return errors.New("id token has no c_hash")
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return err
	}
	var h hash.Hash
	switch alg := parsed.Method.Alg(); alg {
	case oidc.RS256, oidc.ES256, oidc.PS256:
		h = sha256.New()
	case oidc.RS384, oidc.ES384, oidc.PS384:
		h = sha512.New384()
	case oidc.RS512, oidc.ES512, oidc.PS512, oidc.EdDSA:
		h = sha512.New()
	default:
		return fmt.Errorf("unsupported id token algorithm %q", alg)
	}
	h.Write([]byte(code))
	sum := h.Sum(nil)
	want := base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2])
	if subtle.ConstantTimeCompare([]byte(want), []byte(cl.CodeHash)) != 1 {
		return errors.New("c_hash does not match the code")
	}
	return nil
}

func randomString() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
