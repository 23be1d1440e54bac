package triplestore

import (
	"fmt"
	"strconv"
	"strings"
)

// TermKind discriminates the three RDF term kinds.
type TermKind uint8

const (
	// KindNone is the zero kind. A zero Term acts as a wildcard in Scan.
	KindNone TermKind = iota
	KindIRI
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "none"
	}
}

// Term is an RDF term. Datatype and Lang are only meaningful for literals.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// TypedLiteral returns a literal with an explicit datatype IRI.
func TypedLiteral(v, datatype string) Term {
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang}
}

// IsZero reports whether t is the wildcard term.
func (t Term) IsZero() bool { return t.Kind == KindNone }

// String renders t in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return "?"
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String returns a human-readable representation of the Triple.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// IsValid checks the positional constraints of RDF: the subject is an IRI or a
// blank node, the predicate an IRI, and every position is non-empty.
func (t Triple) IsValid() bool {
	if t.Subject.Kind != KindIRI && t.Subject.Kind != KindBlank {
		return false
	}
	if t.Predicate.Kind != KindIRI || t.Predicate.Value == "" {
		return false
	}
	if t.Subject.Value == "" || t.Object.IsZero() {
		return false
	}
	return t.Object.Kind == KindLiteral || t.Object.Value != ""
}
