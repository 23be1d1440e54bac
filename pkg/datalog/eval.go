package datalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
)

// Row maps variable names to bound values. IRIs and literals are their
// lexical value; blank nodes are "_:label".
type Row map[string]string

// Result is the answer to a query.
type Result struct {
	Vars      []string `json:"vars"`
	Rows      []Row    `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// wildcard is the anonymous variable; each occurrence matches anything.
const wildcard = "_"

type filter func(b binding) bool

type binding map[string]triplestore.Term

// Query is a parsed and checked query, ready to run.
type Query struct {
	patterns []Atom
	filters  []filter
	vars     []string
}

// Compile parses query and checks predicate names, arities, regular
// expressions, and that every filtered variable is bound by a triples atom.
func Compile(query string) (*Query, error) {
	atoms, err := Parse(query)
	if err != nil {
		return nil, err
	}

	q := &Query{}
	bound := map[string]bool{}
	for _, a := range atoms {
		if a.Predicate != "triples" {
			continue
		}
		if len(a.Args) != 3 {
			return nil, fmt.Errorf("triples takes 3 arguments, got %d: %w", len(a.Args), errs.ErrInvalidInput)
		}
		q.patterns = append(q.patterns, a)
		for _, arg := range a.Args {
			if arg.Var && arg.Value != wildcard && !bound[arg.Value] {
				bound[arg.Value] = true
				q.vars = append(q.vars, arg.Value)
			}
		}
	}
	if len(q.patterns) == 0 {
		return nil, fmt.Errorf("query needs at least one triples atom: %w", errs.ErrInvalidInput)
	}

	for _, a := range atoms {
		if a.Predicate == "triples" {
			continue
		}
		if len(a.Args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d: %w", a.Predicate, len(a.Args), errs.ErrInvalidInput)
		}
		for _, arg := range a.Args {
			if arg.Var && !bound[arg.Value] {
				return nil, fmt.Errorf("variable %s is not bound by a triples atom: %w", arg.Value, errs.ErrInvalidInput)
			}
		}
		lhs, rhs := a.Args[0], a.Args[1]
		switch a.Predicate {
		case "neq":
			q.filters = append(q.filters, func(b binding) bool { return b.value(lhs) != b.value(rhs) })
		case "eq":
			q.filters = append(q.filters, func(b binding) bool { return b.value(lhs) == b.value(rhs) })
		case "regex":
			if rhs.Var {
				return nil, fmt.Errorf("regex pattern must be a constant: %w", errs.ErrInvalidInput)
			}
			re, err := regexp.Compile(rhs.Value)
			if err != nil {
				return nil, fmt.Errorf("regex %q: %w: %v", rhs.Value, errs.ErrInvalidInput, err)
			}
			q.filters = append(q.filters, func(b binding) bool { return re.MatchString(b.value(lhs)) })
		default:
			return nil, fmt.Errorf("unknown predicate %q: %w", a.Predicate, errs.ErrInvalidInput)
		}
	}
	return q, nil
}

// Vars returns the variables in order of first appearance.
func (q *Query) Vars() []string { return q.vars }

// Run evaluates the query against store by nested-loop join, atoms in
// order. limit <= 0 means no limit.
func (q *Query) Run(ctx context.Context, store *triplestore.Store, limit int) (*Result, error) {
	res := &Result{Vars: q.vars, Rows: []Row{}}
	seen := map[string]bool{}

	var solve func(i int, b binding) (bool, error)
	solve = func(i int, b binding) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if i == len(q.patterns) {
			for _, f := range q.filters {
				if !f(b) {
					return true, nil
				}
			}
			row := make(Row, len(q.vars))
			for _, v := range q.vars {
				row[v] = termValue(b[v])
			}
			if key := rowKey(q.vars, row); !seen[key] {
				seen[key] = true
				if limit > 0 && len(res.Rows) == limit {
					res.Truncated = true
					return false, nil
				}
				res.Rows = append(res.Rows, row)
			}
			return true, nil
		}

		args := q.patterns[i].Args
		s, p, o := b.scanTerm(args[0], false), b.scanTerm(args[1], false), b.scanTerm(args[2], true)
		for t, err := range store.Scan(s, p, o) {
			if err != nil {
				return false, err
			}
			next, ok := b.extend(args, t)
			if !ok {
				continue
			}
			more, err := solve(i+1, next)
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}

	if _, err := solve(0, binding{}); err != nil {
		return nil, err
	}
	return res, nil
}

// Evaluate compiles and runs query in one step.
func Evaluate(ctx context.Context, store *triplestore.Store, query string, limit int) (*Result, error) {
	q, err := Compile(query)
	if err != nil {
		return nil, err
	}
	return q.Run(ctx, store, limit)
}

// scanTerm returns the term to scan with for a. Object constants are
// matched by value in extend since they may be literals or IRIs.
func (b binding) scanTerm(a Arg, object bool) triplestore.Term {
	if a.Var {
		return b[a.Value]
	}
	if object {
		return triplestore.Term{}
	}
	return constTerm(a.Value)
}

// extend binds the variables of args to t, or reports a conflict.
func (b binding) extend(args []Arg, t triplestore.Triple) (binding, bool) {
	next := make(binding, len(b)+3)
	for k, v := range b {
		next[k] = v
	}
	for i, term := range []triplestore.Term{t.Subject, t.Predicate, t.Object} {
		a := args[i]
		if !a.Var {
			if termValue(term) != a.Value {
				return nil, false
			}
			continue
		}
		if a.Value == wildcard {
			continue
		}
		if prev, ok := next[a.Value]; ok && prev != term {
			return nil, false
		}
		next[a.Value] = term
	}
	return next, true
}

func (b binding) value(a Arg) string {
	if a.Var {
		return termValue(b[a.Value])
	}
	return a.Value
}

func constTerm(v string) triplestore.Term {
	if len(v) > 2 && v[:2] == "_:" {
		return triplestore.Blank(v)
	}
	return triplestore.IRI(v)
}

func termValue(t triplestore.Term) string {
	if t.Kind == triplestore.KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

func rowKey(vars []string, row Row) string {
	var key strings.Builder
	for _, v := range vars {
		key.WriteString(row[v])
		key.WriteByte(0)
	}
	return key.String()
}
