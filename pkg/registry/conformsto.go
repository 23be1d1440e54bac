package registry

import (
	"context"
	"fmt"
	"log/slog"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/jsonld"
)

// ConformsToResolver follows the conformsTo links of crate entries to the
// profiles they claim to satisfy.
type ConformsToResolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewConformsToResolver creates a ConformsToResolver.
func NewConformsToResolver(f Fetcher, logger *slog.Logger) *ConformsToResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConformsToResolver{fetcher: f, logger: logger}
}

// ResolveAll resolves every pending crate entry. A failure on one entry never
// stops the others.
func (r *ConformsToResolver) ResolveAll(ctx context.Context, entries []*Entry) {
	for _, e := range entries {
		if e.Terminal() || e.Type != TypeCrate {
			continue
		}
		if err := r.safeResolve(ctx, e); err != nil {
			r.logger.Error("conformsTo resolution failed", "uri", e.URI, "error", err)
			e.Fail(ReasonResolutionFailed, err)
		}
	}
}

func (r *ConformsToResolver) safeResolve(ctx context.Context, e *Entry) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: %w: panic: %v", e.URI, errs.ErrResolution, p)
		}
	}()
	r.Resolve(ctx, e)
	return nil
}

// Resolve gives a crate entry its terminal disposition.
//
// A list of candidates approves the entry when at least one of them is a
// profile, every profile found being recorded. A single object either
// approves the entry or explains why not: the target is not a profile, or
// the target is not a valid URI.
func (r *ConformsToResolver) Resolve(ctx context.Context, e *Entry) {
	if e.Terminal() {
		return
	}

	switch v := e.ConformsTo.(type) {
	case []any:
		for _, candidate := range v {
			if id, ok := r.profileOf(ctx, e.URI, candidate); ok {
				e.AddProfile(id)
			}
		}
		if !e.Approve() {
			r.logger.Warn("no profile found in conformsTo", "uri", e.URI, "candidates", len(v))
			e.Warn(ReasonNoProfile, fmt.Errorf("%s: %w", e.URI, errs.ErrResolution))
		}
	default:
		uri, ok := r.candidateURI(e.URI, v)
		if !ok || !r.fetcher.Resolve(ctx, uri) {
			r.logger.Warn("conformsTo uri is not valid", "uri", e.URI, "conformsTo", uri)
			e.Warn(ReasonInvalidURI, fmt.Errorf("%s: %w", e.URI, errs.ErrResolution))
			return
		}
		id, ok := r.profileAt(ctx, uri)
		if !ok {
			r.logger.Warn("conformsTo uri is not a profile", "uri", e.URI, "conformsTo", uri)
			e.Warn(ReasonNotProfile, fmt.Errorf("%s: %w", uri, errs.ErrResolution))
			return
		}
		e.AddProfile(id)
		e.Approve()
	}
}

// profileOf checks one list candidate.
func (r *ConformsToResolver) profileOf(ctx context.Context, base string, candidate any) (string, bool) {
	uri, ok := r.candidateURI(base, candidate)
	if !ok {
		return "", false
	}
	if !r.fetcher.Resolve(ctx, uri) {
		return "", false
	}
	return r.profileAt(ctx, uri)
}

// candidateURI extracts the candidate URI of a conformsTo value, resolving
// "./" ids against the crate URI.
func (r *ConformsToResolver) candidateURI(base string, value any) (string, bool) {
	id, ok := jsonld.IDFromProp(value)
	if !ok {
		r.logger.Debug("conformsTo value has no usable @id", "uri", base, "value", value)
		return "", false
	}
	if jsonld.IsDotRelative(id) {
		return RewriteURI(base, id)
	}
	return id, true
}

// profileAt fetches uri and returns its profile identifier if it is a profile.
func (r *ConformsToResolver) profileAt(ctx context.Context, uri string) (string, bool) {
	doc, err := r.fetcher.FetchDocument(ctx, uri)
	if err != nil {
		r.logger.Debug("conformsTo target could not be fetched", "uri", uri, "error", err)
		return "", false
	}
	if !jsonld.IsProfile(doc) {
		return "", false
	}
	id, _ := jsonld.ProfileProp(doc)
	return absoluteID(uri, id), true
}
