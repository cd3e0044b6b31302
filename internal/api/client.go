// Package api implements the HTTP client for the file vault REST API.
// Every server endpoint is exposed as one typed method; transport errors
// and non-2xx responses both surface as *Error values.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token. An empty string means
// no session; the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL *url.URL
	hc      *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

type ClientOptions struct {
	Addr     string
	Insecure bool
	Timeout  time.Duration
	Tokens   TokenSource
	Logger   *slog.Logger
}

func NewClient(opt ClientOptions) (*Client, error) {
	if opt.Addr == "" {
		return nil, errors.New("addr is required")
	}
	u, err := url.Parse(opt.Addr)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		return nil, errors.New("invalid addr")
	}

	t := &http.Transport{}
	if strings.EqualFold(u.Scheme, "https") {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: opt.Insecure} //nolint:gosec
	}

	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	lg := opt.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	hc := &http.Client{Transport: t, Timeout: timeout}
	return &Client{baseURL: u, hc: hc, tokens: opt.Tokens, log: lg}, nil
}

// BaseURL returns the scheme://host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// newRequest builds a request with auth and correlation headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do executes a prepared request and normalizes failures into *Error.
// Callers own the response body on success.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", req.Method, "path", req.URL.Path, "err", err)
		return nil, &Error{Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(resp)}
		c.log.Debug("request rejected", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return nil, apiErr
	}
	return resp, nil
}

// doJSON sends an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	return c.doJSONQuery(ctx, method, path, "", in, out)
}

func (c *Client) doJSONQuery(ctx context.Context, method, path, rawQuery string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if rawQuery != "" {
		req.URL.RawQuery = rawQuery
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// errorMessage extracts a server-supplied message from a failed response.
// The backend answers with plain-text http.Error bodies; JSON error
// envelopes are handled too in case a proxy rewrites them.
func errorMessage(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return resp.Status
	}
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil && env.Error != "" {
		return env.Error
	}
	return string(bytes.TrimSpace(b))
}
