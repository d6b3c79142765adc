// Package api is the web client's typed access to the catalog API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrEmptyID is returned before any request is made when an id is the nil UUID.
var ErrEmptyID = errors.New("id must not be empty")

// StatusError reports a non-2xx answer from the API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "api status error"
	}
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	if b := strings.TrimSpace(e.Body); b != "" {
		msg += ": " + b
	}
	return msg
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

const maxErrorBody = 512

// Client shares one http.Client between the movie and actor calls.
type Client struct {
	base *url.URL
	http *http.Client

	Movies *MovieAPI
	Actors *ActorAPI
}

// New builds a client for baseURL.  rt may wrap the default transport, for
// example to attach the signed-in user's bearer token; nil uses
// http.DefaultTransport.
func New(baseURL string, timeout time.Duration, rt http.RoundTripper) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	c := &Client{base: u, http: &http.Client{Transport: rt, Timeout: timeout}}
	c.Movies = &MovieAPI{c: c}
	c.Actors = &ActorAPI{c: c}
	return c, nil
}

type request struct {
	method      string
	path        string
	contentType string
	accept      string
	body        any
}

// do sends r and decodes a JSON answer into out (when out is non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	ref, err := url.Parse(r.path)
	if err != nil {
		return err
	}
	target := c.base.ResolveReference(ref).String()

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return err
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: r.method, URL: target, StatusCode: resp.StatusCode, Body: string(excerpt)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, target, err)
	}
	return nil
}
