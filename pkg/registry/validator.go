package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/jsonld"
	"github.com/duynguyendang/profile-registry/pkg/resolver"
)

// Fetcher is the network side of validation. *resolver.Resolver satisfies it.
type Fetcher interface {
	Resolve(ctx context.Context, uri string) bool
	Negotiate(ctx context.Context, uri string) resolver.Negotiation
	FetchDocument(ctx context.Context, uri string) (*jsonld.Document, error)
}

// ContactValidator checks and normalizes the contact column.
type ContactValidator interface {
	Validate(raw string) bool
	Normalize(raw string) string
}

// Validator runs the per-entry checks. It remembers every URI it has let
// through the contact check, so it must see entries in input order.
type Validator struct {
	fetcher  Fetcher
	contacts ContactValidator
	logger   *slog.Logger
	seen     map[string]struct{}
}

// NewValidator creates a Validator.
func NewValidator(f Fetcher, c ContactValidator, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		fetcher:  f,
		contacts: c,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// Seen reports whether uri is already claimed by an earlier entry.
func (v *Validator) Seen(uri string) bool {
	_, ok := v.seen[uri]
	return ok
}

// Check runs contact, duplicate, resolvability and content negotiation checks.
// It returns true when the entry is queued for classification; otherwise the
// entry has been given its terminal disposition.
func (v *Validator) Check(ctx context.Context, e *Entry) bool {
	if e.Terminal() {
		return false
	}

	if v.contacts != nil {
		if !v.contacts.Validate(e.Contact) {
			v.logger.Warn("contact is not valid", "source", e.Source, "row", e.Row, "contact", e.Contact)
			e.Warn(ReasonContact, errs.ErrContact)
			return false
		}
		e.Contact = v.contacts.Normalize(e.Contact)
	}

	if v.Seen(e.URI) {
		v.logger.Warn("uri already in registry", "source", e.Source, "row", e.Row, "uri", e.URI)
		e.Warn(ReasonDuplicate, errs.ErrDuplicate)
		return false
	}
	v.seen[e.URI] = struct{}{}

	if !v.fetcher.Resolve(ctx, e.URI) {
		e.Fail(ReasonInvalidURI, fmt.Errorf("%s: %w", e.URI, errs.ErrTransport))
		return false
	}

	n := v.fetcher.Negotiate(ctx, e.URI)
	switch n.Kind {
	case resolver.Usable:
	case resolver.Redirect:
		target, ok := RewriteURI(e.URI, n.Target)
		if !ok {
			v.logger.Warn("uri redirects to an unusable location", "uri", e.URI, "target", n.Target)
			e.Fail(ReasonInvalidURI, fmt.Errorf("%s -> %s: %w", e.URI, n.Target, errs.ErrContentType))
			return false
		}
		v.logger.Debug("uri rewritten by content negotiation", "from", e.URI, "to", target)
		e.URI = target
		if v.Seen(target) {
			v.logger.Warn("uri already in registry", "source", e.Source, "row", e.Row, "uri", target)
			e.Warn(ReasonDuplicate, errs.ErrDuplicate)
			return false
		}
		v.seen[target] = struct{}{}
	default:
		e.Fail(ReasonInvalidURI, fmt.Errorf("%s: %w", e.URI, errs.ErrContentType))
		return false
	}

	return true
}

// Classify fetches the document behind a queued entry and decides its type.
// Profiles are approved here; crates keep their conformsTo value for the
// ConformsToResolver and stay pending.
func (v *Validator) Classify(ctx context.Context, e *Entry) {
	if e.Terminal() {
		return
	}

	doc, err := v.fetcher.FetchDocument(ctx, e.URI)
	if err != nil {
		v.logger.Warn("could not fetch document", "uri", e.URI, "error", err)
		e.Type = TypeError
		e.Fail(ReasonType, err)
		return
	}

	c := jsonld.Classify(doc)
	switch c.Kind {
	case jsonld.KindProfile:
		e.Type = TypeProfile
		e.AddProfile(absoluteID(e.URI, c.ProfileID))
		e.Approve()
	case jsonld.KindCrate:
		e.Type = TypeCrate
		e.ConformsTo = c.ConformsTo
	default:
		v.logger.Warn("document is not a profile or a crate", "uri", e.URI)
		e.Type = TypeError
		e.Fail(ReasonType, fmt.Errorf("%s: %w", e.URI, errs.ErrClassification))
	}
}

// RewriteURI applies a content-negotiation redirect to uri. Absolute targets
// replace uri; "./x" targets are appended to uri after its trailing slash.
// Any other form is rejected.
func RewriteURI(uri, target string) (string, bool) {
	switch {
	case jsonld.IsAbsoluteURI(target) && (strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")):
		return target, true
	case jsonld.IsDotRelative(target):
		return strings.TrimSuffix(uri, "/") + target[1:], true
	default:
		return "", false
	}
}

// absoluteID returns the profile identifier to record. Profiles without an
// @id are identified by their own URI; "./" ids are resolved against it.
func absoluteID(base, id string) string {
	switch {
	case id == "":
		return base
	case jsonld.IsDotRelative(id):
		if id == "./" {
			return base
		}
		rewritten, _ := RewriteURI(base, id)
		return rewritten
	default:
		return id
	}
}
