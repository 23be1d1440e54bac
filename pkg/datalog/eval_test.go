package datalog

import (
	"context"
	"errors"
	"testing"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *triplestore.Store {
	t.Helper()
	store, err := triplestore.Open(triplestore.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	list := triplestore.Blank(vocab.ListRegistry)
	iri := triplestore.IRI
	_, err = store.AddBatch([]triplestore.Triple{
		triplestore.NewTriple(list, iri(vocab.ItemListElement), iri("https://p/a.json")),
		triplestore.NewTriple(list, iri(vocab.ItemListElement), iri("https://p/b.json")),
		triplestore.NewTriple(iri("https://p/a.json"), iri(vocab.Name), triplestore.Literal("Profile A")),
		triplestore.NewTriple(iri("https://p/b.json"), iri(vocab.Name), triplestore.Literal("Crate B")),
		triplestore.NewTriple(iri("https://p/a.json"), iri(vocab.Item), iri("https://p/a.json")),
	})
	require.NoError(t, err)
	return store
}

func TestEvaluateJoin(t *testing.T) {
	store := newTestStore(t)
	res, err := Evaluate(context.Background(), store,
		`triples(_:listregistry, <`+vocab.ItemListElement+`>, P), triples(P, <`+vocab.Name+`>, N)`, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"P", "N"}, res.Vars)
	assert.ElementsMatch(t, []Row{
		{"P": "https://p/a.json", "N": "Profile A"},
		{"P": "https://p/b.json", "N": "Crate B"},
	}, res.Rows)
}

func TestEvaluateFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res, err := Evaluate(ctx, store, `triples(P, <`+vocab.Name+`>, N), regex(N, "^Crate")`, 0)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"P": "https://p/b.json", "N": "Crate B"}}, res.Rows)

	res, err = Evaluate(ctx, store, `triples(S, _, O), S != O, triples(O, <`+vocab.Name+`>, "Profile A")`, 0)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"S": "_:listregistry", "O": "https://p/a.json"}}, res.Rows)
}

func TestEvaluateRepeatedVariable(t *testing.T) {
	store := newTestStore(t)
	res, err := Evaluate(context.Background(), store, `triples(X, _, X)`, 0)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"X": "https://p/a.json"}}, res.Rows)
}

func TestEvaluateLimitAndDistinct(t *testing.T) {
	store := newTestStore(t)
	res, err := Evaluate(context.Background(), store, `triples(S, _, _)`, 0)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3, "rows are distinct")
	assert.False(t, res.Truncated)

	res, err = Evaluate(context.Background(), store, `triples(S, _, _)`, 2)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestCompileErrors(t *testing.T) {
	for _, q := range []string{
		`regex(A, "x")`,
		`triples(A, B)`,
		`triples(A, B, C), regex(D, "x")`,
		`triples(A, B, C), regex(A, B)`,
		`triples(A, B, C), regex(A, "(")`,
		`triples(A, B, C), near(A, B)`,
	} {
		_, err := Compile(q)
		assert.True(t, errors.Is(err, errs.ErrInvalidInput), "%s: %v", q, err)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	store := newTestStore(t)
	q, err := Compile(`triples(S, P, O)`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.Run(ctx, store, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
