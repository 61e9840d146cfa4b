// Package api is the HTTP client for the bookstore API. Every call except
// login and register carries the current bearer credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Endpoint paths.
const (
	pathRegister = "/api/register"
	pathLogin    = "/api/login"
	pathBooks    = "/api/books"
	pathFilter   = "/api/filter"
	pathInvoices = "/api/invoices"
)

// unauthenticated lists the paths that never carry a credential, even when
// one is present: they establish a new one.
var unauthenticated = map[string]bool{
	pathRegister: true,
	pathLogin:    true,
}

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/mesh-intelligence/storefront/internal/api"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// TokenSource supplies the credential for each outbound call. An empty
// token means logged out.
type TokenSource interface {
	Token() string
}

// Client issues requests against one bookstore API.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *zap.Logger
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client from cfg. tokens may be nil for a client that never
// authenticates.
func New(cfg types.Config, tokens TokenSource, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: tokens,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// do sends one request and decodes a 2xx JSON response into out (when out
// is non-nil). Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(span, fmt.Errorf("%s %s: wait for rate limiter: %w", method, path, err))
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return c.fail(span, err)
	}
	requestID := req.Header.Get(HeaderRequestID)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("storefront.request_id", requestID),
		attribute.Bool("storefront.authenticated", req.Header.Get("Authorization") != ""),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return c.fail(span, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(span, newError(method, path, resp))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(span, fmt.Errorf("%s %s: decode response: %w", method, path, err))
	}
	return nil
}

// newRequest builds the request, attaching the JSON body, a request ID, and
// the credential where the path allows one.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, newRequestID())
	c.attachCredential(req, path)
	return req, nil
}

// attachCredential sets the bearer header unless path is unauthenticated or
// no credential is held.
func (c *Client) attachCredential(req *http.Request, path string) {
	if unauthenticated[path] || c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// fail records err on span and returns it.
func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// newRequestID returns a time-ordered UUID, falling back to v4.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
