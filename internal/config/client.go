package config

import (
	"os"
	"strings"
	"time"
)

// ClientConfig holds the settings of the MVC web client.
type ClientConfig struct {
	Env      string
	Port     string
	LogLevel string

	APIBaseURL string        // base URL of the catalog API
	APITimeout time.Duration // per-request timeout of the shared HTTP client

	OIDC    OIDCConfig
	Session SessionConfig
}

// OIDCConfig describes the relying-party registration at the identity provider.
type OIDCConfig struct {
	Authority             string
	ClientID              string
	ClientSecret          string
	RedirectURL           string
	PostLogoutRedirectURL string
	Scopes                []string
	ResponseType          string // "code id_token" (hybrid, form_post) or "code"
	TokenRefresh          bool   // refresh the access token shortly before it expires
}

// Hybrid reports whether the hybrid flow with form_post should be used.
func (o OIDCConfig) Hybrid() bool {
	return strings.Contains(o.ResponseType, "id_token")
}

// SessionConfig controls the cookie that carries the session id.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// LoadClient reads the web client configuration from the environment.
func LoadClient() (ClientConfig, error) {
	var l loader
	cfg := ClientConfig{
		Env:        envStr("APP_ENV", "dev"),
		Port:       envStr("WEB_PORT", "8080"),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		APIBaseURL: envStr("API_BASE_URL", "http://localhost:52330/"),
		APITimeout: envDur("API_TIMEOUT", 30*time.Second),
		OIDC: OIDCConfig{
			Authority:             l.must("OIDC_AUTHORITY"),
			ClientID:              envStr("OIDC_CLIENT_ID", "rmdbwebclient"),
			ClientSecret:          os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:           envStr("OIDC_REDIRECT_URL", "http://localhost:8080/signin-oidc"),
			PostLogoutRedirectURL: envStr("OIDC_POST_LOGOUT_REDIRECT_URL", "http://localhost:8080/"),
			Scopes:                strings.Fields(envStr("OIDC_SCOPES", "rmdbapi offline_access")),
			ResponseType:          envStr("OIDC_RESPONSE_TYPE", "code id_token"),
			TokenRefresh:          envBool("OIDC_TOKEN_REFRESH", false),
		},
		Session: SessionConfig{
			CookieName: envStr("SESSION_COOKIE", "rmdb_session"),
			TTL:        envDur("SESSION_TTL", 10*time.Minute),
			Secure:     envBool("SESSION_SECURE", false),
		},
	}
	return cfg, l.err()
}
