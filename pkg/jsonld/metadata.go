package jsonld

// metadataKeys are the descriptive fields copied into a registry listing.
var metadataKeys = []string{
	"name",
	"description",
	"version",
	"license",
	"datePublished",
	"keywords",
	"url",
	"author",
	"publisher",
}

// Metadata extracts descriptive fields from the node that best describes the
// document: the Profile node, else the root data entity ("./"), else the
// first node. Nested objects are reduced to their @id or name.
func Metadata(doc *Document) map[string]any {
	n, ok := describingNode(doc)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	if id, ok := n.ID(); ok {
		out["@id"] = id
	}
	for _, key := range metadataKeys {
		v, ok := n[key]
		if !ok {
			continue
		}
		if flat := flatten(v); flat != nil {
			out[key] = flat
		}
	}
	return out
}

func describingNode(doc *Document) (Node, bool) {
	if n, ok := profileNode(doc); ok {
		return n, true
	}
	if doc == nil || len(doc.Nodes) == 0 {
		return nil, false
	}
	for _, n := range doc.Nodes {
		if id, _ := n.ID(); id == "./" {
			return n, true
		}
	}
	return doc.Nodes[0], true
}

func flatten(v any) any {
	switch t := v.(type) {
	case string, float64, bool:
		return t
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return name
		}
		if id, ok := t["@id"].(string); ok {
			return id
		}
		if val, ok := t["@value"]; ok {
			return flatten(val)
		}
		return nil
	case []any:
		var out []any
		for _, item := range t {
			if f := flatten(item); f != nil {
				out = append(out, f)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
