// Package datalog parses and evaluates conjunctive queries over the registry
// graph, for example
//
//	triples(L, <http://schema.org/itemListElement>, P), regex(P, "ro-crate")
//
// Unquoted arguments starting with an upper-case letter, '_' or '?' are
// variables. Quoted strings, <IRIs> and everything else are constants.
package datalog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
)

// Arg is one argument of an atom.
type Arg struct {
	Value string
	Var   bool
}

// V returns a variable argument.
func V(name string) Arg { return Arg{Value: name, Var: true} }

// C returns a constant argument.
func C(value string) Arg { return Arg{Value: value} }

func (a Arg) String() string {
	if a.Var {
		return a.Value
	}
	return fmt.Sprintf("%q", a.Value)
}

// Atom represents a single unit in a query (e.g., triples(S, P, O) or neq(A, B)).
type Atom struct {
	Predicate string
	Args      []Arg
}

// Parse parses a query of comma-separated atoms. "Head :- Body" keeps the
// body, a trailing dot is dropped, and "A != B" is sugar for neq(A, B).
func Parse(query string) ([]Atom, error) {
	query = strings.TrimSpace(query)
	if idx := strings.Index(query, ":-"); idx != -1 {
		query = query[idx+2:]
	}
	query = strings.TrimSuffix(strings.TrimSpace(query), ".")

	rawAtoms := SmartSplit(query)
	if len(rawAtoms) == 0 {
		return nil, fmt.Errorf("empty query: %w", errs.ErrInvalidInput)
	}

	var atoms []Atom
	for _, raw := range rawAtoms {
		if raw == "" {
			continue
		}

		if !strings.Contains(raw, "(") && strings.Contains(raw, "!=") {
			lhs, rhs, _ := strings.Cut(raw, "!=")
			atoms = append(atoms, Atom{
				Predicate: "neq",
				Args:      []Arg{parseArg(lhs), parseArg(rhs)},
			})
			continue
		}

		atom, err := parseAtom(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse atom '%s': %w", raw, err)
		}
		atoms = append(atoms, atom)
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("empty query: %w", errs.ErrInvalidInput)
	}
	return atoms, nil
}

// parseAtom parses "predicate(arg1, arg2, ...)".
func parseAtom(s string) (Atom, error) {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start == -1 || end == -1 || start >= end || strings.TrimSpace(s[end+1:]) != "" {
		return Atom{}, fmt.Errorf("expected format 'predicate(args...)': %w", errs.ErrInvalidInput)
	}

	predicate := strings.TrimSpace(s[:start])
	if predicate == "" {
		return Atom{}, fmt.Errorf("missing predicate name: %w", errs.ErrInvalidInput)
	}

	var args []Arg
	for _, raw := range SmartSplit(s[start+1 : end]) {
		args = append(args, parseArg(raw))
	}
	return Atom{Predicate: predicate, Args: args}, nil
}

func parseArg(raw string) Arg {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		switch {
		case (first == '"' || first == '\'') && last == first:
			return C(raw[1 : len(raw)-1])
		case first == '<' && last == '>':
			return C(raw[1 : len(raw)-1])
		}
	}
	if strings.HasPrefix(raw, "?") {
		return V(raw[1:])
	}
	if strings.HasPrefix(raw, "_:") {
		return C(raw)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == '_' || unicode.IsUpper(r) {
		return V(raw)
	}
	return C(raw)
}

// SmartSplit splits a string by comma, correctly handling quotes, <IRIs>
// and parentheses.
// e.g. "a, b, 'c,d'" -> ["a", "b", "'c,d'"]
func SmartSplit(s string) []string {
	var results []string
	var current strings.Builder
	depth := 0
	inIRI := false
	var quote rune

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '<':
			inIRI = true
		case r == '>':
			inIRI = false
		case inIRI:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			results = append(results, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if strings.TrimSpace(current.String()) != "" {
		results = append(results, strings.TrimSpace(current.String()))
	}
	return results
}
