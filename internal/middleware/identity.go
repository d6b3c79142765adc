package middleware

import "github.com/labstack/echo/v4"

// claimsFrom returns the claims stored by JWTAuth, or nil.
func claimsFrom(c echo.Context) Claims {
	cl, _ := c.Get("claims").(Claims)
	return cl
}

// userID returns the token subject or "anon" for unauthenticated requests.
func userID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
