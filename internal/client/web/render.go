// Package web is the server-rendered front end of the catalog.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer implements echo.Renderer.  Each page is parsed together with
// base.html once at start-up.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"first": func(msgs []string) string {
		if len(msgs) == 0 {
			return ""
		}
		return msgs[0]
	},
}

func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "base" {
			continue
		}
		t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/base.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page is what every template receives.
type Page struct {
	Title  string
	User   string
	CSRF   string
	Data   any
	Errors map[string][]string
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if p, ok := data.(*Page); ok && c != nil && p.User == "" {
		if s, ok := c.Get("session").(*session.Session); ok {
			p.User = s.Name()
		}
	}
	if p, ok := data.(*Page); ok && c != nil && p.CSRF == "" {
		p.CSRF, _ = c.Get(csrfContextKey).(string)
	}
	return t.ExecuteTemplate(w, "base", data)
}
