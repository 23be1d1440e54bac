// Package resolver fetches registry URIs over HTTP.
//
// Every request that reaches the network is preceded by a fixed delay so the
// registry never hammers the hosts it validates. Successful responses are
// cached for the lifetime of the Resolver, so the several lookups a single
// entry goes through issue one request.
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/jsonld"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultDelay        = 300 * time.Millisecond
	DefaultTimeout      = 30 * time.Second
	DefaultCacheSize    = 512
	DefaultMaxBodyBytes = 16 << 20
	DefaultUserAgent    = "profile-registry/1.0"

	acceptHeader = "application/ld+json, application/json;q=0.9, text/html;q=0.5, */*;q=0.1"
)

// Response is the part of an HTTP response the registry inspects.
type Response struct {
	// URL is the final URL after HTTP redirects.
	URL         string
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
}

// OK reports whether the response has status 200.
func (r *Response) OK() bool { return r != nil && r.StatusCode == http.StatusOK }

// MediaType returns the content type without parameters.
func (r *Response) MediaType() string {
	if r == nil || r.ContentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(r.ContentType, ";", 2)[0]))
	}
	return mt
}

// Resolver fetches URIs with a fixed inter-request delay.
type Resolver struct {
	client       *http.Client
	delay        time.Duration
	userAgent    string
	maxBodyBytes int64
	cache        *lru.Cache[string, *Response]
	logger       *slog.Logger
	requests     int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDelay sets the pause before each network request.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) { r.delay = d }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithCacheSize bounds the response cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(r *Resolver) {
		if n <= 0 {
			r.cache = nil
			return
		}
		r.cache, _ = lru.New[string, *Response](n)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	cache, _ := lru.New[string, *Response](DefaultCacheSize)
	r := &Resolver{
		client:       &http.Client{Timeout: DefaultTimeout},
		delay:        DefaultDelay,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		cache:        cache,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Requests returns how many requests reached the network.
func (r *Resolver) Requests() int { return r.requests }

// Fetch GETs uri. A non-200 status is not an error; transport failures are
// returned wrapped in ErrTransport.
func (r *Resolver) Fetch(ctx context.Context, uri string) (*Response, error) {
	if r.cache != nil {
		if resp, ok := r.cache.Get(uri); ok {
			return resp, nil
		}
	}

	if err := r.wait(ctx); err != nil {
		return nil, fmt.Errorf("GET %s: %w: %v", uri, errs.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %v", uri, errs.ErrTransport, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", r.userAgent)

	r.requests++
	httpResp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %v", uri, errs.ErrTransport, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, r.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", uri, errs.ErrTransport, err)
	}

	resp := &Response{
		URL:         httpResp.Request.URL.String(),
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Header:      httpResp.Header.Clone(),
		Body:        body,
	}
	r.logger.Debug("fetched uri", "uri", uri, "status", resp.StatusCode, "contentType", resp.ContentType, "bytes", len(body))

	if resp.OK() && r.cache != nil {
		r.cache.Add(uri, resp)
	}
	return resp, nil
}

// wait sleeps for the configured delay unless ctx ends first.
func (r *Resolver) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Resolve reports whether uri answers 200. It never fails.
func (r *Resolver) Resolve(ctx context.Context, uri string) bool {
	if uri == "" {
		return false
	}
	resp, err := r.Fetch(ctx, uri)
	if err != nil {
		r.logger.Warn("uri is not resolvable", "uri", uri, "error", err)
		return false
	}
	if !resp.OK() {
		r.logger.Warn("uri is not resolvable", "uri", uri, "status", resp.StatusCode)
		return false
	}
	return true
}

// FetchDocument fetches uri and parses it as JSON-LD.
func (r *Resolver) FetchDocument(ctx context.Context, uri string) (*jsonld.Document, error) {
	resp, err := r.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("GET %s: status %d: %w", uri, resp.StatusCode, errs.ErrTransport)
	}
	doc, err := jsonld.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w: %v", uri, resp.MediaType(), errs.ErrContentType, err)
	}
	return doc, nil
}
