package middleware

import (
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// MediaTypeKey is the context key under which Produces stores the
// negotiated response media type.
const MediaTypeKey = "media_type"

type acceptEntry struct {
	typ   string
	q     float64
	order int
}

// parseAccept splits an Accept header into media ranges ordered by quality,
// keeping header order for ties.  Ranges with q=0 are dropped.
func parseAccept(header string) []acceptEntry {
	var out []acceptEntry
	for i, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		typ, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		q := 1.0
		if s, ok := params["q"]; ok {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				q = v
			}
		}
		if q <= 0 {
			continue
		}
		out = append(out, acceptEntry{typ: typ, q: q, order: i})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].q > out[j].q })
	return out
}

// Negotiate picks the offered media type that best matches the Accept
// header.  Wildcards resolve to offered[0]; an empty header accepts
// anything.
func Negotiate(accept string, offered ...string) (string, bool) {
	if len(offered) == 0 {
		return "", false
	}
	if strings.TrimSpace(accept) == "" {
		return offered[0], true
	}
	for _, e := range parseAccept(accept) {
		if e.typ == "*/*" {
			return offered[0], true
		}
		if strings.HasSuffix(e.typ, "/*") {
			prefix := strings.TrimSuffix(e.typ, "*")
			for _, o := range offered {
				if strings.HasPrefix(o, prefix) {
					return o, true
				}
			}
			continue
		}
		for _, o := range offered {
			if e.typ == o {
				return o, true
			}
		}
	}
	return "", false
}

// Produces rejects requests whose Accept header matches none of offered
// with 406 and records the negotiated type under MediaTypeKey.
func Produces(offered ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mt, ok := Negotiate(c.Request().Header.Get(echo.HeaderAccept), offered...)
			if !ok {
				return c.JSON(http.StatusNotAcceptable, echo.Map{
					"error":     "not acceptable",
					"supported": offered,
				})
			}
			c.Set(MediaTypeKey, mt)
			return next(c)
		}
	}
}

// Consumes rejects request bodies whose Content-Type is not in accepted
// with 415.  Parameters such as charset are ignored.
func Consumes(accepted ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ct := c.Request().Header.Get(echo.HeaderContentType)
			typ, _, err := mime.ParseMediaType(ct)
			if err == nil {
				for _, a := range accepted {
					if strings.EqualFold(typ, a) {
						return next(c)
					}
				}
			}
			return c.JSON(http.StatusUnsupportedMediaType, echo.Map{
				"error":     "unsupported media type",
				"supported": accepted,
			})
		}
	}
}

// MediaType returns the type chosen by Produces, or application/json.
func MediaType(c echo.Context) string {
	if mt, ok := c.Get(MediaTypeKey).(string); ok && mt != "" {
		return mt
	}
	return echo.MIMEApplicationJSON
}
