package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/jsonld"
	"github.com/duynguyendang/profile-registry/pkg/resolver"
)

// fakeFetcher serves canned documents without a network.
type fakeFetcher struct {
	docs      map[string]string
	pages     map[string]bool
	redirects map[string]string
	panicOn   string
	fetches   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		docs:      map[string]string{},
		pages:     map[string]bool{},
		redirects: map[string]string{},
		fetches:   map[string]int{},
	}
}

func (f *fakeFetcher) Resolve(_ context.Context, uri string) bool {
	if uri == f.panicOn {
		panic("boom")
	}
	_, isDoc := f.docs[uri]
	_, isRedirect := f.redirects[uri]
	return isDoc || isRedirect || f.pages[uri]
}

func (f *fakeFetcher) Negotiate(_ context.Context, uri string) resolver.Negotiation {
	if target, ok := f.redirects[uri]; ok {
		return resolver.Negotiation{Kind: resolver.Redirect, Target: target}
	}
	if _, ok := f.docs[uri]; ok {
		return resolver.Negotiation{Kind: resolver.Usable}
	}
	return resolver.Negotiation{Kind: resolver.Unusable}
}

func (f *fakeFetcher) FetchDocument(_ context.Context, uri string) (*jsonld.Document, error) {
	f.fetches[uri]++
	body, ok := f.docs[uri]
	if !ok {
		return nil, fmt.Errorf("GET %s: %w", uri, errs.ErrTransport)
	}
	doc, err := jsonld.Parse([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", uri, errs.ErrContentType, err)
	}
	return doc, nil
}

func profileDoc(id string) string {
	return fmt.Sprintf(`{"@graph": [{"@id": %q, "@type": ["Dataset", "Profile"], "name": "profile %s"}]}`, id, id)
}

func crateDoc(conformsTo string) string {
	return fmt.Sprintf(`{"@graph": [{"@id": "./", "@type": "Dataset", "conformsTo": %s}]}`, conformsTo)
}

// acceptAll treats every contact as valid.
type acceptAll struct{}

func (acceptAll) Validate(string) bool        { return true }
func (acceptAll) Normalize(raw string) string { return raw }

type rejectAll struct{}

func (rejectAll) Validate(string) bool        { return false }
func (rejectAll) Normalize(raw string) string { return raw }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
