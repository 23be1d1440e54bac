package jsonld

// TypeProfile is the @type literal marking a profile node.
const TypeProfile = "Profile"

// PropConformsTo is the key linking a crate to the profiles it satisfies.
const PropConformsTo = "conformsTo"

// Kind is the semantic role of a document.
type Kind string

const (
	KindUnrecognized Kind = "unrecognized"
	KindProfile      Kind = "profile"
	KindCrate        Kind = "crate"
)

// Classification is the tagged result of Classify. ProfileID is set for
// KindProfile, ConformsTo for KindCrate.
type Classification struct {
	Kind       Kind
	ProfileID  string
	ConformsTo any
}

// Classify decides the role of doc. A document typed Profile is a profile
// even when it also declares conformsTo.
func Classify(doc *Document) Classification {
	if IsProfile(doc) {
		id, _ := ProfileProp(doc)
		return Classification{Kind: KindProfile, ProfileID: id}
	}
	if HasConformsTo(doc) {
		return Classification{Kind: KindCrate, ConformsTo: ConformsToValue(doc)}
	}
	return Classification{Kind: KindUnrecognized}
}

// IsProfile reports whether any node's @type contains "Profile".
func IsProfile(doc *Document) bool {
	_, ok := profileNode(doc)
	return ok
}

// HasConformsTo reports whether any node carries a conformsTo key.
func HasConformsTo(doc *Document) bool {
	if doc == nil {
		return false
	}
	for _, n := range doc.Nodes {
		if _, ok := n[PropConformsTo]; ok {
			return true
		}
	}
	return false
}

// ConformsToURIs collects the conformsTo values of every node, flattening
// list values. It returns nil when there are none.
func ConformsToURIs(doc *Document) []any {
	if doc == nil {
		return nil
	}
	var out []any
	for _, n := range doc.Nodes {
		v, ok := n[PropConformsTo]
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ConformsToValue returns the lone conformsTo object when the document has
// exactly one, given in scalar form; otherwise the flattened list.
func ConformsToValue(doc *Document) any {
	if doc == nil {
		return nil
	}
	var scalar any
	count := 0
	for _, n := range doc.Nodes {
		v, ok := n[PropConformsTo]
		if !ok {
			continue
		}
		count++
		if _, isList := v.([]any); !isList {
			scalar = v
		}
	}
	if count == 1 && scalar != nil {
		return scalar
	}
	if list := ConformsToURIs(doc); list != nil {
		return list
	}
	return nil
}

// ProfileProp returns the @id of the first node typed Profile.
func ProfileProp(doc *Document) (string, bool) {
	n, ok := profileNode(doc)
	if !ok {
		return "", false
	}
	return n.ID()
}

// IDFromProp extracts the @id of a conformsTo value. Only objects whose @id
// is an absolute URI or a "./"-relative path qualify.
func IDFromProp(value any) (string, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := obj["@id"].(string)
	if !ok {
		return "", false
	}
	if IsAbsoluteURI(id) || IsDotRelative(id) {
		return id, true
	}
	return "", false
}

func profileNode(doc *Document) (Node, bool) {
	if doc == nil {
		return nil, false
	}
	for _, n := range doc.Nodes {
		if n.HasType(TypeProfile) {
			return n, true
		}
	}
	return nil, false
}
