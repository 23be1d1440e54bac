package knowledge

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/knakk/rdf"
)

// fromRDF converts a decoded triple to the store's representation.
func fromRDF(t rdf.Triple) (triplestore.Triple, error) {
	s, err := fromTerm(t.Subj)
	if err != nil {
		return triplestore.Triple{}, err
	}
	p, err := fromTerm(t.Pred)
	if err != nil {
		return triplestore.Triple{}, err
	}
	o, err := fromTerm(t.Obj)
	if err != nil {
		return triplestore.Triple{}, err
	}
	return triplestore.NewTriple(s, p, o), nil
}

func fromTerm(t rdf.Term) (triplestore.Term, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return triplestore.IRI(v.String()), nil
	case rdf.Blank:
		return triplestore.Blank(strings.TrimPrefix(v.String(), "_:")), nil
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return triplestore.LangLiteral(v.String(), lang), nil
		}
		if dt := v.DataType.String(); dt != "" && dt != vocab.XSDString {
			return triplestore.TypedLiteral(v.String(), dt), nil
		}
		return triplestore.Literal(v.String()), nil
	}
	return triplestore.Term{}, fmt.Errorf("unsupported rdf term %T", t)
}

// toRDF converts a stored triple for encoding.
func toRDF(t triplestore.Triple) (rdf.Triple, error) {
	s, err := toTerm(t.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	p, err := toTerm(t.Predicate)
	if err != nil {
		return rdf.Triple{}, err
	}
	o, err := toTerm(t.Object)
	if err != nil {
		return rdf.Triple{}, err
	}
	subj, ok := s.(rdf.Subject)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be a subject", t.Subject)
	}
	pred, ok := p.(rdf.Predicate)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be a predicate", t.Predicate)
	}
	obj, ok := o.(rdf.Object)
	if !ok {
		return rdf.Triple{}, fmt.Errorf("%s cannot be an object", t.Object)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func toTerm(t triplestore.Term) (rdf.Term, error) {
	switch t.Kind {
	case triplestore.KindIRI:
		return rdf.NewIRI(t.Value)
	case triplestore.KindBlank:
		return rdf.NewBlank(t.Value)
	case triplestore.KindLiteral:
		switch {
		case t.Lang != "":
			return rdf.NewLangLiteral(t.Value, t.Lang)
		case t.Datatype != "":
			dt, err := rdf.NewIRI(t.Datatype)
			if err != nil {
				return nil, err
			}
			return rdf.NewTypedLiteral(t.Value, dt), nil
		default:
			xsdString, _ := rdf.NewIRI(vocab.XSDString)
			return rdf.NewTypedLiteral(t.Value, xsdString), nil
		}
	}
	return nil, fmt.Errorf("cannot encode term %s", t)
}
