// Package panel implements the PanelClient port over the p-manager HTTP API.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PanelClient = (*Client)(nil)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 1 << 20

// Client implements driven.PanelClient.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	logger  *slog.Logger
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration
	// CacheDir holds stored panel responses across invocations. Empty keeps
	// them in memory for the life of the client.
	CacheDir string
	// MaxStale lets a signed-in GET be answered from a stored response up to
	// this old without contacting the panel. Zero always asks the panel,
	// revalidating with ETag or Last-Modified when the panel sent one.
	MaxStale time.Duration
}

// NewClient creates a panel API client with the following transport stack:
//  1. Authorizer (JSON content type and bearer credential on every request)
//  2. staleTransport (credential tag and max-stale on signed-in GETs)
//  3. request logging, including whether the answer came from the cache
//  4. httpcache over a disk or memory store
//  5. storePolicy (only 200s are stored, per credential)
func NewClient(baseURL string, tokens TokenSource, opts ClientOptions, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cacheTransport := httpcache.NewTransport(newCache(opts.CacheDir))
	cacheTransport.Transport = &storePolicy{next: http.DefaultTransport}

	var transport http.RoundTripper = &loggingTransport{next: cacheTransport, logger: logger}
	transport = &staleTransport{next: transport, maxStale: opts.MaxStale}

	httpClient := &http.Client{
		Transport: NewAuthorizer(transport, tokens, logger),
		Timeout:   opts.Timeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client. The
// caller is responsible for putting an Authorizer in its transport.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL: unsupported scheme %q", u.Scheme)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: httpClient, baseURL: u, logger: logger}, nil
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges admin credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, username, password string) (string, error) {
	var resp signInResponse
	if err := c.do(ctx, http.MethodPost, "v1/sign-in", signInRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("sign in: panel returned an empty token")
	}
	return resp.Token, nil
}

// Profile returns the profile of the proxy user with the given identity,
// including its Shadowsocks connection URLs.
func (c *Client) Profile(ctx context.Context, identity string) (*model.Profile, error) {
	if identity == "" {
		return nil, errors.New("profile: identity is required")
	}
	var p model.Profile
	path := "v1/profile?" + url.Values{"u": {identity}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Users lists every proxy user.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "v1/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Stats returns the panel traffic counters and the user count.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	if err := c.do(ctx, http.MethodGet, "v1/settings/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// do sends a JSON request to path (relative to the base URL) and decodes a
// 2xx body into out. Any other status becomes *model.APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	endpoint := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	// Reading to EOF lets the cache store the body and the connection be reused.
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			c.logger.Warn("failed to read error body", "path", path, "error", readErr)
		}
		return &model.APIError{
			Method:   method,
			Path:     "/" + path,
			Response: model.Response{Status: resp.StatusCode, Body: raw},
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// ResolveLanding resolves page (e.g. "index.html") against the panel base URL.
func ResolveLanding(baseURL, page string) (string, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(page)
	if err != nil {
		return "", fmt.Errorf("parsing landing page %q: %w", page, err)
	}
	return base.ResolveReference(ref).String(), nil
}
