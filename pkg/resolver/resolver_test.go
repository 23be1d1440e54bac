package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(opts ...Option) *Resolver {
	base := []Option{WithDelay(0), WithLogger(quietLogger())}
	return New(append(base, opts...)...)
}

func newSite(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/profile.json", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/ld+json")
		io.WriteString(w, `{"@graph": [{"@id": "https://p/x", "@type": "Profile"}]}`)
	})
	mux.HandleFunc("/link-header", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Add("Link", `<https://other/license>; rel="license", <./ro-crate-metadata.json>; rel="describedby"; type="application/ld+json"`)
		io.WriteString(w, "landing page")
	})
	mux.HandleFunc("/quoted-title", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Add("Link", `<https://q/meta.json>; rel="describedby"; title="RO-Crate, metadata"; type="application/ld+json"`)
		io.WriteString(w, "landing page")
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<!doctype html><html><head>
<link rel="stylesheet" href="style.css">
<link rel="alternate" type="application/ld+json" href="https://example.org/meta.json">
</head><body>hi</body></html>`)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "nothing here")
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCachesSuccessfulResponses(t *testing.T) {
	var hits atomic.Int32
	srv := newSite(t, &hits)
	r := newTestResolver()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := r.Fetch(ctx, srv.URL+"/profile.json")
		require.NoError(t, err)
		assert.True(t, resp.OK())
		assert.Equal(t, "application/ld+json", resp.MediaType())
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, r.Requests())
}

func TestFetchDoesNotCacheFailures(t *testing.T) {
	var hits atomic.Int32
	srv := newSite(t, &hits)
	r := newTestResolver()

	for i := 0; i < 2; i++ {
		resp, err := r.Fetch(context.Background(), srv.URL+"/missing")
		require.NoError(t, err, "a non-200 status is not a transport error")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchWithoutCache(t *testing.T) {
	var hits atomic.Int32
	srv := newSite(t, &hits)
	r := newTestResolver(WithCacheSize(0))

	for i := 0; i < 2; i++ {
		_, err := r.Fetch(context.Background(), srv.URL+"/profile.json")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchAppliesFixedDelay(t *testing.T) {
	srv := newSite(t, nil)
	r := newTestResolver(WithDelay(40 * time.Millisecond))

	start := time.Now()
	_, err := r.Fetch(context.Background(), srv.URL+"/profile.json")
	require.NoError(t, err)
	_, err = r.Fetch(context.Background(), srv.URL+"/plain")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	// cached responses skip the delay
	start = time.Now()
	_, err = r.Fetch(context.Background(), srv.URL+"/profile.json")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestFetchHonoursCancellation(t *testing.T) {
	srv := newSite(t, nil)
	r := newTestResolver(WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Fetch(ctx, srv.URL+"/profile.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrTransport))
	assert.Equal(t, 0, r.Requests())
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/profile.json"
	srv.Close()

	r := newTestResolver(WithTimeout(2 * time.Second))
	ctx := context.Background()

	_, err := r.Fetch(ctx, url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrTransport))
	assert.Equal(t, "transport", errs.Kind(err))

	assert.NotPanics(t, func() {
		assert.False(t, r.Resolve(ctx, url))
		assert.Equal(t, Unusable, r.Negotiate(ctx, url).Kind)
	})
}

func TestResolve(t *testing.T) {
	srv := newSite(t, nil)
	r := newTestResolver()
	ctx := context.Background()

	assert.True(t, r.Resolve(ctx, srv.URL+"/profile.json"))
	assert.False(t, r.Resolve(ctx, srv.URL+"/missing"))
	assert.False(t, r.Resolve(ctx, ""))
	assert.False(t, r.Resolve(ctx, "::not a url"))
}

func TestNegotiate(t *testing.T) {
	srv := newSite(t, nil)
	r := newTestResolver()
	ctx := context.Background()

	cases := []struct {
		path   string
		kind   NegotiationKind
		target string
	}{
		{"/profile.json", Usable, ""},
		{"/link-header", Redirect, "./ro-crate-metadata.json"},
		{"/quoted-title", Redirect, "https://q/meta.json"},
		{"/page.html", Redirect, "https://example.org/meta.json"},
		{"/plain", Unusable, ""},
		{"/missing", Unusable, ""},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			got := r.Negotiate(ctx, srv.URL+c.path)
			assert.Equal(t, c.kind, got.Kind, got.Kind.String())
			assert.Equal(t, c.target, got.Target)
		})
	}
}

func TestParseLinkHeader(t *testing.T) {
	links := parseLinkHeader([]string{
		`<https://a/meta.json>; rel="alternate"; type="application/ld+json", <https://b/>; rel=license`,
		`<./x.json>;rel="describedby service";type="application/json; charset=utf-8"`,
	})
	require.Len(t, links, 3)

	assert.Equal(t, "https://a/meta.json", links[0].target)
	assert.True(t, links[0].describes())

	assert.Equal(t, "https://b/", links[1].target)
	assert.False(t, links[1].describes())

	assert.Equal(t, "./x.json", links[2].target)
	assert.Equal(t, []string{"describedby", "service"}, links[2].rel)

	assert.Empty(t, parseLinkHeader([]string{"garbage", "<unterminated"}))
}

func TestParseLinkHeaderQuotedSeparators(t *testing.T) {
	links := parseLinkHeader([]string{
		`<https://a/meta.json>; rel="describedby"; title="RO-Crate, metadata; v1"; type="application/ld+json", <https://b/x,y>; rel="alternate"; title="say \"hi\""; type="application/json"`,
	})
	require.Len(t, links, 2)

	assert.Equal(t, "https://a/meta.json", links[0].target)
	assert.Equal(t, "application/ld+json", links[0].typ)
	assert.True(t, links[0].describes())

	assert.Equal(t, "https://b/x,y", links[1].target)
	assert.Equal(t, []string{"alternate"}, links[1].rel)
	assert.True(t, links[1].describes())
}

func TestFetchDocument(t *testing.T) {
	srv := newSite(t, nil)
	r := newTestResolver()
	ctx := context.Background()

	doc, err := r.FetchDocument(ctx, srv.URL+"/profile.json")
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 1)

	_, err = r.FetchDocument(ctx, srv.URL+"/plain")
	assert.True(t, errors.Is(err, errs.ErrContentType))

	_, err = r.FetchDocument(ctx, srv.URL+"/missing")
	assert.True(t, errors.Is(err, errs.ErrTransport))
}

func TestDocumentLoader(t *testing.T) {
	var hits atomic.Int32
	srv := newSite(t, &hits)
	r := newTestResolver()
	loader := r.Loader(context.Background())

	rd, err := loader.LoadDocument(srv.URL + "/profile.json")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/profile.json", rd.DocumentURL)
	assert.IsType(t, map[string]any{}, rd.Document)

	_, err = loader.LoadDocument(srv.URL + "/plain")
	assert.Error(t, err)
	_, err = loader.LoadDocument(srv.URL + "/missing")
	assert.Error(t, err)

	_, err = r.Fetch(context.Background(), srv.URL+"/profile.json")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "loader and resolver share the cache: one profile hit, one miss")
}
