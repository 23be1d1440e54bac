// Package jsonld inspects JSON-LD documents of the RO-Crate family and decides
// whether they describe a profile, a crate conforming to a profile, or
// something the registry does not understand.
//
// Every function tolerates malformed input: missing keys and unexpected
// shapes yield false / nil, never a panic.
package jsonld

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Node is one JSON-LD node object.
type Node map[string]any

// Document is a parsed JSON-LD document.
type Document struct {
	// Raw is the decoded JSON value as produced by encoding/json.
	Raw any
	// Nodes are the objects of the top-level @graph, or the document itself
	// when it has no @graph.
	Nodes []Node
}

// Parse decodes a JSON-LD document.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json-ld: %w", err)
	}
	return FromValue(raw), nil
}

// FromValue wraps an already decoded JSON value.
func FromValue(raw any) *Document {
	doc := &Document{Raw: raw}
	obj, ok := raw.(map[string]any)
	if !ok {
		return doc
	}
	graph, hasGraph := obj["@graph"]
	if !hasGraph {
		doc.Nodes = []Node{obj}
		return doc
	}
	items, ok := graph.([]any)
	if !ok {
		if single, ok := graph.(map[string]any); ok {
			doc.Nodes = []Node{single}
		}
		return doc
	}
	for _, item := range items {
		if n, ok := item.(map[string]any); ok {
			doc.Nodes = append(doc.Nodes, n)
		}
	}
	return doc
}

// ID returns the node's @id.
func (n Node) ID() (string, bool) {
	id, ok := n["@id"].(string)
	return id, ok && id != ""
}

// Types returns the node's @type values, whether scalar or list.
func (n Node) Types() []string {
	switch v := n["@type"].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// HasType reports whether the node carries typ.
func (n Node) HasType(typ string) bool {
	for _, t := range n.Types() {
		if t == typ {
			return true
		}
	}
	return false
}

// IsAbsoluteURI reports whether s parses as a URI with both scheme and host.
func IsAbsoluteURI(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsDotRelative reports whether s is a "./"-relative reference.
func IsDotRelative(s string) bool {
	return strings.HasPrefix(s, "./")
}
