package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// DocumentLoader adapts a Resolver to ld.DocumentLoader so remote @context
// documents go through the same throttle and cache as everything else.
type DocumentLoader struct {
	ctx context.Context
	r   *Resolver
}

// Loader returns an ld.DocumentLoader bound to ctx.
func (r *Resolver) Loader(ctx context.Context) *DocumentLoader {
	if ctx == nil {
		ctx = context.Background()
	}
	return &DocumentLoader{ctx: ctx, r: r}
}

// LoadDocument implements ld.DocumentLoader.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	resp, err := l.r.Fetch(l.ctx, u)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	if !resp.OK() {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("GET %s: status %d", u, resp.StatusCode))
	}
	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	return &ld.RemoteDocument{DocumentURL: resp.URL, Document: doc}, nil
}

var _ ld.DocumentLoader = (*DocumentLoader)(nil)
