package export

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
)

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID       string            `json:"id"`                 // IRI, or "_:label" for blank nodes
	Name     string            `json:"name"`               // Display name (schema:name or last IRI segment)
	Kind     string            `json:"kind"`               // "iri" or "blank"
	Group    string            `json:"group"`              // Grouping for visualization
	Types    []string          `json:"types,omitempty"`    // rdf:type values
	Metadata map[string]string `json:"metadata,omitempty"` // Literal-valued properties
}

// D3Link represents a link/edge in the D3 force-directed graph.
type D3Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Type     string `json:"type"` // "registry" for list structure, "document" for merged profile triples
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// registryPredicates are the predicates that build the list structure.
var registryPredicates = map[string]bool{
	vocab.HasPart:         true,
	vocab.IsPartOf:        true,
	vocab.ItemListElement: true,
	vocab.Item:            true,
}

// D3Transformer handles the conversion of graph triples to D3 graph format.
type D3Transformer struct {
	IgnoredPredicates map[string]bool
	// MaxLiteralLength drops literal metadata longer than this many bytes.
	MaxLiteralLength int
}

// NewD3Transformer creates a transformer with the default filters.
func NewD3Transformer() *D3Transformer {
	return &D3Transformer{
		IgnoredPredicates: map[string]bool{},
		MaxLiteralLength:  200,
	}
}

// Transform converts triples into a D3Graph. IRI and blank objects become
// links; literal objects are attached to the subject's metadata; rdf:type
// values become the node's types.
func (t *D3Transformer) Transform(triples []triplestore.Triple) *D3Graph {
	nodes := make(map[string]*D3Node)
	var links []D3Link

	node := func(term triplestore.Term) *D3Node {
		id := termID(term)
		if n, ok := nodes[id]; ok {
			return n
		}
		n := &D3Node{ID: id, Name: displayName(term), Kind: term.Kind.String(), Group: "resource"}
		nodes[id] = n
		return n
	}

	for _, tr := range triples {
		pred := tr.Predicate.Value
		if t.IgnoredPredicates[pred] {
			continue
		}
		subj := node(tr.Subject)

		switch {
		case pred == vocab.RDFType && tr.Object.Kind == triplestore.KindIRI:
			subj.Types = append(subj.Types, tr.Object.Value)
			continue
		case tr.Object.Kind == triplestore.KindLiteral:
			if strings.Contains(tr.Object.Value, "\n") || (t.MaxLiteralLength > 0 && len(tr.Object.Value) > t.MaxLiteralLength) {
				continue
			}
			if pred == vocab.Name {
				subj.Name = tr.Object.Value
			}
			if subj.Metadata == nil {
				subj.Metadata = make(map[string]string)
			}
			subj.Metadata[localName(pred)] = tr.Object.Value
			continue
		}

		obj := node(tr.Object)
		linkType := "document"
		if registryPredicates[pred] {
			linkType = "registry"
		}
		if tr.Subject == tr.Object {
			continue
		}
		links = append(links, D3Link{
			Source:   subj.ID,
			Target:   obj.ID,
			Relation: localName(pred),
			Type:     linkType,
		})
	}

	out := make([]D3Node, 0, len(nodes))
	for _, n := range nodes {
		n.Group = group(n.Types)
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if links == nil {
		links = []D3Link{}
	}
	return &D3Graph{Nodes: out, Links: links}
}

func group(types []string) string {
	for _, typ := range types {
		switch typ {
		case vocab.CreativeWork:
			return "root"
		case vocab.ItemList:
			return "registry"
		case vocab.ListItem:
			return "profile"
		}
	}
	return "resource"
}

func termID(t triplestore.Term) string {
	if t.Kind == triplestore.KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

// displayName creates a human-readable label from the last IRI segment.
func displayName(t triplestore.Term) string {
	if t.Kind == triplestore.KindBlank {
		return t.Value
	}
	return localName(t.Value)
}

func localName(iri string) string {
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndexAny(trimmed, "/#"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	if trimmed == "" {
		return iri
	}
	return trimmed
}

// ExportD3 is a convenience wrapper for D3Transformer over a whole store.
func ExportD3(store *triplestore.Store) (*D3Graph, error) {
	triples, err := store.Triples()
	if err != nil {
		return nil, err
	}
	return NewD3Transformer().Transform(triples), nil
}

// SaveD3Graph writes the graph to a JSON file.
func SaveD3Graph(graph *D3Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(graph)
}
