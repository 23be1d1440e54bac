// Package knowledge assembles the registry knowledge graph: a root document
// holding one item list of every approved profile, merged with the triples
// of the profile documents themselves.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/resolver"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/google/uuid"
	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// Assembler owns the registry graph. It is the graph's only writer.
type Assembler struct {
	store    *triplestore.Store
	resolver *resolver.Resolver
	root     string
	logger   *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRoot sets the IRI of the registry root node. It defaults to "./",
// which keeps the graph relative to wherever registry.ttl is published.
func WithRoot(iri string) Option {
	return func(a *Assembler) {
		if iri != "" {
			a.root = iri
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assembler over store and writes the bootstrap triples.
// res may be nil when the graph is only loaded and served.
func New(store *triplestore.Store, res *resolver.Resolver, opts ...Option) (*Assembler, error) {
	a := &Assembler{
		store:    store,
		resolver: res,
		root:     vocab.Root,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.Bootstrap(); err != nil {
		return nil, err
	}
	return a, nil
}

// Store returns the underlying triple store.
func (a *Assembler) Store() *triplestore.Store { return a.store }

// Root returns the IRI of the root node.
func (a *Assembler) Root() string { return a.root }

func (a *Assembler) rootTerm() triplestore.Term { return triplestore.IRI(a.root) }

func listRegistry() triplestore.Term { return triplestore.Blank(vocab.ListRegistry) }

// Bootstrap asserts the root node and the registry list. Running it again
// adds nothing.
func (a *Assembler) Bootstrap() error {
	root, list := a.rootTerm(), listRegistry()
	_, err := a.store.AddBatch([]triplestore.Triple{
		triplestore.NewTriple(root, triplestore.IRI(vocab.RDFType), triplestore.IRI(vocab.CreativeWork)),
		triplestore.NewTriple(root, triplestore.IRI(vocab.HasPart), list),
		triplestore.NewTriple(list, triplestore.IRI(vocab.RDFType), triplestore.IRI(vocab.ItemList)),
		triplestore.NewTriple(list, triplestore.IRI(vocab.Name), triplestore.Literal(vocab.ListRegistryName)),
		triplestore.NewTriple(list, triplestore.IRI(vocab.IsPartOf), root),
	})
	if err != nil {
		return fmt.Errorf("bootstrap registry graph: %w", err)
	}
	return nil
}

// AddProfile fetches the profile document at uri, converts it to RDF and
// commits it together with the list membership of uri in one batch. When the
// document cannot be read as RDF nothing is written and the error wraps
// ErrGraphMerge.
func (a *Assembler) AddProfile(ctx context.Context, uri string) error {
	if a.resolver == nil {
		return fmt.Errorf("add %s: no resolver: %w", uri, errs.ErrInternal)
	}
	resp, err := a.resolver.Fetch(ctx, uri)
	if err != nil {
		return fmt.Errorf("merge %s: %w: %v", uri, errs.ErrGraphMerge, err)
	}
	if !resp.OK() {
		return fmt.Errorf("merge %s: status %d: %w", uri, resp.StatusCode, errs.ErrGraphMerge)
	}

	docTriples, err := a.documentTriples(ctx, uri, resp.Body)
	if err != nil {
		return fmt.Errorf("merge %s: %w: %v", uri, errs.ErrGraphMerge, err)
	}

	item := triplestore.IRI(uri)
	batch := make([]triplestore.Triple, 0, len(docTriples)+3)
	batch = append(batch, triplestore.NewTriple(listRegistry(), triplestore.IRI(vocab.ItemListElement), item))
	batch = append(batch, docTriples...)
	batch = append(batch,
		triplestore.NewTriple(item, triplestore.IRI(vocab.RDFType), triplestore.IRI(vocab.ListItem)),
		triplestore.NewTriple(item, triplestore.IRI(vocab.Item), item),
	)

	added, err := a.store.AddBatch(batch)
	if err != nil {
		return fmt.Errorf("merge %s: %w: %v", uri, errs.ErrGraphMerge, err)
	}
	a.logger.Info("merged profile into graph", "uri", uri, "documentTriples", len(docTriples), "added", added)
	return nil
}

// documentTriples expands a JSON-LD body to RDF. Blank nodes get a prefix
// unique to this merge so two documents never share one.
func (a *Assembler) documentTriples(ctx context.Context, base string, body []byte) ([]triplestore.Triple, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode json-ld: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(base)
	opts.Format = "application/n-quads"
	opts.DocumentLoader = a.resolver.Loader(ctx)

	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("json-ld to rdf: %w", err)
	}
	nquads, _ := out.(string)

	quads, err := rdf.NewQuadDecoder(strings.NewReader(nquads), rdf.NQuads).DecodeAll()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode n-quads: %w", err)
	}

	prefix := "m" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "_"
	triples := make([]triplestore.Triple, 0, len(quads))
	for _, q := range quads {
		t, err := fromRDF(q.Triple)
		if err != nil {
			return nil, err
		}
		t.Subject = relabel(t.Subject, prefix)
		t.Object = relabel(t.Object, prefix)
		triples = append(triples, t)
	}
	return triples, nil
}

func relabel(t triplestore.Term, prefix string) triplestore.Term {
	if t.Kind != triplestore.KindBlank {
		return t
	}
	return triplestore.Blank(prefix + t.Value)
}

// ListItems returns the URIs registered in the item list.
func (a *Assembler) ListItems() ([]string, error) {
	objs, err := a.store.Objects(listRegistry(), triplestore.IRI(vocab.ItemListElement))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Value)
	}
	return out, nil
}

// LoadTurtle adds the triples of a Turtle document, typically a registry.ttl
// written by an earlier build.
func (a *Assembler) LoadTurtle(r io.Reader) (int, error) {
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)
	var batch []triplestore.Triple
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("decode turtle: %w", err)
		}
		t, err := fromRDF(tr)
		if err != nil {
			return 0, err
		}
		batch = append(batch, t)
	}
	added, err := a.store.AddBatch(batch)
	if err != nil {
		return 0, fmt.Errorf("load turtle: %w", err)
	}
	return added, nil
}
