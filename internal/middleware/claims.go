package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireClaim rejects requests whose token lacks claim or carries a
// different value.  It assumes JWTAuth ran first; without claims in the
// context the request is forbidden.
func RequireClaim(claim, value string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claimsFrom(c).String(claim) != value {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// MustLiveInCountry is the country policy of the catalog API.
func MustLiveInCountry(country string) echo.MiddlewareFunc {
	return RequireClaim("country", country)
}
