// Package api provides the HTTP client the chat widget uses to talk to its server.
package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/config"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// csrfCookie is echoed back in the X-CSRFToken header on form posts
const csrfCookie = "csrftoken"

// Response is a server response whose body has not been read yet.
// The caller owns Body and must close it.
type Response struct {
	StatusCode int
	Status     string
	Body       io.ReadCloser
}

// OK reports whether the status is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ChatClient talks to the chat server: it fetches the panel markup and posts
// the message and clear forms. Session cookies live in the client's cookie
// jar, so cookies the server sets are forwarded on later requests.
type ChatClient struct {
	httpClient     tls_client.HttpClient
	baseURL        *url.URL
	panelPath      string
	timeoutSeconds int
	logger         zerolog.Logger
	mu             sync.RWMutex
	closed         bool
}

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithPanelPath sets the markup provider path, resolved against the base URL
func WithPanelPath(path string) ClientOption {
	return func(c *ChatClient) {
		c.panelPath = path
	}
}

// WithTimeoutSeconds bounds each request including its streamed body. Zero
// disables the transport timeout.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *ChatClient) {
		c.timeoutSeconds = seconds
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *ChatClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the transport (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = httpClient
	}
}

// NewClient creates a ChatClient for the server at baseURL. cookies may be nil.
func NewClient(baseURL string, cookies *config.Cookies, opts ...ClientOption) (*ChatClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	client := &ChatClient{
		baseURL:        base,
		panelPath:      models.DefaultPanelPath,
		timeoutSeconds: 0,
		logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// tls-client applies its own default timeout unless one is given
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithCookieJar(tls_client.NewCookieJar()),
			tls_client.WithNotFollowRedirects(),
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	if cookies != nil && cookies.Len() > 0 {
		client.httpClient.SetCookies(base, toHTTPCookies(cookies.Snapshot()))
	}

	return client, nil
}

func toHTTPCookies(items []config.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(items))
	for _, item := range items {
		path := item.Path
		if path == "" {
			path = "/"
		}
		out = append(out, &http.Cookie{Name: item.Name, Value: item.Value, Path: path})
	}
	return out
}

// Close marks the client closed; later requests fail with ErrClientClosed
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *ChatClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BaseURL returns the server origin
func (c *ChatClient) BaseURL() string {
	return c.baseURL.String()
}

// PanelURL returns the absolute markup provider URL
func (c *ChatClient) PanelURL() string {
	return c.resolve(c.panelPath)
}

// SessionCookies returns the cookies the jar holds for the server, including
// any the server issued during this session
func (c *ChatClient) SessionCookies() *config.Cookies {
	cookies := config.NewCookies()
	for _, ck := range c.httpClient.GetCookies(c.baseURL) {
		cookies.Set(config.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return cookies
}

// resolve turns a form action or path into an absolute URL. An empty action
// targets the panel URL, the document the form was loaded from.
func (c *ChatClient) resolve(ref string) string {
	if ref == "" {
		ref = c.panelPath
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	panel := c.baseURL
	if p, err := url.Parse(c.panelPath); err == nil {
		panel = c.baseURL.ResolveReference(p)
	}
	return panel.ResolveReference(u).String()
}

// FetchPanel fetches the panel markup
func (c *ChatClient) FetchPanel(ctx context.Context) (string, error) {
	if c.IsClosed() {
		return "", apierrors.ErrClientClosed
	}

	endpoint := c.PanelURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("fetch panel", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("panel fetched")

	if resp.StatusCode != http.StatusOK {
		return "", apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, "fetch panel failed", readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("read panel", endpoint, err)
	}
	return string(body), nil
}

// Submit posts the message form. The response body is returned unread so
// the caller can consume a streamed reply incrementally.
func (c *ChatClient) Submit(ctx context.Context, action string, data url.Values) (*Response, error) {
	return c.postForm(ctx, "submit message", action, data)
}

// Clear posts the clear form
func (c *ChatClient) Clear(ctx context.Context, action string, data url.Values) (*Response, error) {
	return c.postForm(ctx, "clear conversation", action, data)
}

func (c *ChatClient) postForm(ctx context.Context, operation, action string, data url.Values) (*Response, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	endpoint := c.resolve(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, models.FormHeaders())
	if token, ok := c.SessionCookies().Get(csrfCookie); ok {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}

	c.logger.Debug().
		Str("operation", operation).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("form posted")

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
	}, nil
}

func (c *ChatClient) setHeaders(req *http.Request, extra map[string]string) {
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}
	req.Header.Set("Origin", c.baseURL.Scheme+"://"+c.baseURL.Host)
	req.Header.Set("Referer", c.PanelURL())
}

// readErrorBody reads at most maxErrorBody bytes of a failed response
func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return string(data)
}
