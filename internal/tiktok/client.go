// Package tiktok is a small client for TikTok's public web JSON endpoints.
//
// It does not sign requests or drive a browser. A request TikTok decides to
// withhold comes back empty and is reported as ErrEmptyResponse.
package tiktok

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
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.tiktok.com"
	defaultTimeout = 15 * time.Second
	maxBodySize    = 10 << 20
	maxRedirects   = 10
)

// Config controls session bootstrap.
type Config struct {
	MSToken     string
	Headless    bool
	Browser     string
	NumSessions int
	Timeout     time.Duration
	BaseURL     string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client. The client
// is copied and its redirect policy replaced by the TikTok host check.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// WithMetrics enables upstream Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for session and request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client talks to TikTok using a fixed pool of sessions.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL  string
	baseHost string
	http     *http.Client
	sessions []*session
	next     atomic.Uint64
	metrics  *Metrics
	log      *zap.Logger
	tracer   trace.Tracer
}

// New creates cfg.NumSessions sessions. Sessions without a configured
// token try to obtain one from the TikTok home page.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	profile, err := profileFor(strings.ToLower(cfg.Browser), cfg.Headless)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:  base,
		baseHost: u.Hostname(),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log:    zap.NewNop(),
		tracer: otel.Tracer("tiktokapi/internal/tiktok"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = c.checkRedirect

	n := cfg.NumSessions
	if n <= 0 {
		n = 1
	}
	c.sessions = make([]*session, 0, n)
	for i := 0; i < n; i++ {
		s := &session{id: i, deviceID: newDeviceID(), msToken: cfg.MSToken, profile: profile}
		if s.msToken == "" {
			c.bootstrapToken(ctx, s)
		}
		c.sessions = append(c.sessions, s)
	}

	c.log.Info("tiktok_sessions_created",
		zap.Int("sessions", n),
		zap.String("browser", cfg.Browser),
		zap.Bool("headless", cfg.Headless),
	)
	return c, nil
}

// Sessions describes the session pool.
func (c *Client) Sessions() []Session {
	out := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, Session{
			ID:        s.id,
			DeviceID:  s.deviceID,
			UserAgent: s.profile.userAgent,
			HasToken:  s.msToken != "",
		})
	}
	return out
}

func (c *Client) pick() *session {
	i := c.next.Add(1) - 1
	return c.sessions[i%uint64(len(c.sessions))]
}

// instrument runs one upstream exchange inside a client span and records its
// outcome. fn must include decoding and status checks.
func (c *Client) instrument(ctx context.Context, endpoint string, fn func(context.Context) error) (err error) {
	ctx, span := c.tracer.Start(ctx, "tiktok."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tiktok.endpoint", endpoint)),
	)
	start := time.Now()
	defer func() {
		c.metrics.observe(endpoint, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
			c.log.Debug("tiktok_request_failed",
				zap.String("endpoint", endpoint),
				zap.String("outcome", outcome(err)),
				zap.Error(err),
			)
		}
		span.End()
	}()

	return fn(ctx)
}

// fetch performs a GET and returns the non-empty response body along with
// the URL that served it after redirects.
func (c *Client) fetch(ctx context.Context, s *session, endpoint, rawURL string) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("tiktok %s: build request: %w", endpoint, stripQuery(err))
	}
	s.decorate(req, c.baseURL+"/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("tiktok %s: %w", endpoint, stripQuery(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("tiktok %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("tiktok %s: read body: %w", endpoint, stripQuery(err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, ErrEmptyResponse
	}
	return body, resp.Request.URL, nil
}

// getJSON calls an API path with the session parameters merged with q and
// hands the decoded top-level object to decode.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, decode func(map[string]json.RawMessage) error) error {
	s := c.pick()
	params := s.params()
	for k, v := range q {
		params[k] = v
	}

	return c.instrument(ctx, endpoint, func(ctx context.Context) error {
		body, _, err := c.fetch(ctx, s, endpoint, c.baseURL+path+"?"+params.Encode())
		if err != nil {
			return err
		}

		var m map[string]json.RawMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidJSON, endpoint, err)
		}
		if len(m) == 0 {
			return ErrEmptyResponse
		}
		if err := statusError(endpoint, intField(m, "statusCode", "status_code"), stringField(m, "statusMsg", "status_msg")); err != nil {
			return err
		}
		return decode(m)
	})
}

// checkRedirect applies the outbound host rules to every redirect hop.
func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return c.allowedURL(req.URL)
}

// stripQuery drops the query string from a transport error's URL. API query
// strings carry the session msToken.
func stripQuery(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
			ue.URL = ue.URL[:i]
		}
	}
	return err
}

// intField returns the first of keys holding a JSON number or boolean.
func intField(m map[string]json.RawMessage, keys ...string) int {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if i, err := n.Int64(); err == nil {
				return int(i)
			}
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil && b {
			return 1
		}
	}
	return 0
}

// stringField returns the first of keys holding a string or number, as text.
func stringField(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("{}"))
}
