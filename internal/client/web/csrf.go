package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	csrfField      = "_csrf"
	csrfContextKey = "csrf"
	csrfCookie     = "rmdb_csrf"
)

// CSRF issues a per-browser token in a cookie and rejects unsafe requests
// whose _csrf form field does not match it.
func CSRF(secure bool) echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		ContextKey:     csrfContextKey,
		CookieName:     csrfCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}
