package knowledge

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// The serializers read the store and never write to it, so calling them
// repeatedly yields identical output for an unchanged graph.

// ToTurtle serializes the graph as Turtle.
func (a *Assembler) ToTurtle() (string, error) {
	triples, err := a.store.Triples()
	if err != nil {
		return "", err
	}
	encoded := make([]rdf.Triple, 0, len(triples))
	for _, t := range triples {
		rt, err := toRDF(t)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", t, err)
		}
		encoded = append(encoded, rt)
	}

	var buf bytes.Buffer
	enc := rdf.NewTripleEncoder(&buf, rdf.Turtle)
	if err := enc.EncodeAll(encoded); err != nil {
		return "", fmt.Errorf("encode turtle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode turtle: %w", err)
	}
	return buf.String(), nil
}

// ToJSONLD serializes the graph as expanded JSON-LD, one node object per
// subject.
func (a *Assembler) ToJSONLD() (string, error) {
	triples, err := a.store.Triples()
	if err != nil {
		return "", err
	}

	ds := ld.NewRDFDataset()
	for _, t := range triples {
		ds.Graphs["@default"] = append(ds.Graphs["@default"],
			ld.NewQuad(ldNode(t.Subject), ldNode(t.Predicate), ldNode(t.Object), "@default"))
	}

	nodes, err := ld.NewJsonLdApi().FromRDF(ds, ld.NewJsonLdOptions(""))
	if err != nil {
		return "", fmt.Errorf("encode json-ld: %w", err)
	}
	if nodes == nil {
		nodes = []any{}
	}

	out, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json-ld: %w", err)
	}
	return string(out), nil
}

func ldNode(t triplestore.Term) ld.Node {
	switch t.Kind {
	case triplestore.KindIRI:
		return ld.NewIRI(t.Value)
	case triplestore.KindBlank:
		return ld.NewBlankNode("_:" + t.Value)
	}
	return ld.NewLiteral(t.Value, t.Datatype, t.Lang)
}

// ToRDFXML serializes the graph as RDF/XML, one rdf:Description per triple.
// Each property element declares its own namespace.
func (a *Assembler) ToRDFXML() (string, error) {
	triples, err := a.store.Triples()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<rdf:RDF xmlns:rdf="` + vocab.RDF + `">` + "\n")
	for _, t := range triples {
		ns, local, ok := splitIRI(t.Predicate.Value)
		if !ok {
			return "", fmt.Errorf("predicate %s has no XML local name", t.Predicate.Value)
		}

		buf.WriteString("  <rdf:Description ")
		if t.Subject.Kind == triplestore.KindBlank {
			writeAttr(&buf, "rdf:nodeID", t.Subject.Value)
		} else {
			writeAttr(&buf, "rdf:about", t.Subject.Value)
		}
		buf.WriteString(">\n    <p:" + local + " ")
		writeAttr(&buf, "xmlns:p", ns)

		switch t.Object.Kind {
		case triplestore.KindIRI:
			buf.WriteString(" ")
			writeAttr(&buf, "rdf:resource", t.Object.Value)
			buf.WriteString("/>\n")
		case triplestore.KindBlank:
			buf.WriteString(" ")
			writeAttr(&buf, "rdf:nodeID", t.Object.Value)
			buf.WriteString("/>\n")
		default:
			if t.Object.Lang != "" {
				buf.WriteString(" ")
				writeAttr(&buf, "xml:lang", t.Object.Lang)
			} else if t.Object.Datatype != "" {
				buf.WriteString(" ")
				writeAttr(&buf, "rdf:datatype", t.Object.Datatype)
			}
			buf.WriteString(">")
			if err := xml.EscapeText(&buf, []byte(t.Object.Value)); err != nil {
				return "", err
			}
			buf.WriteString("</p:" + local + ">\n")
		}
		buf.WriteString("  </rdf:Description>\n")
	}
	buf.WriteString("</rdf:RDF>\n")
	return buf.String(), nil
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name + `="`)
	xml.EscapeText(buf, []byte(value))
	buf.WriteString(`"`)
}

// splitIRI splits a predicate IRI into namespace and an XML local name.
func splitIRI(iri string) (string, string, bool) {
	i := strings.LastIndexAny(iri, "#/")
	if i < 0 || i == len(iri)-1 {
		return "", "", false
	}
	ns, local := iri[:i+1], iri[i+1:]
	for j, r := range local {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if j == 0 && !letter {
			return "", "", false
		}
		if !letter && r != '-' && r != '.' && !(r >= '0' && r <= '9') {
			return "", "", false
		}
	}
	return ns, local, true
}
