package triplestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const (
	typ      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	name     = "http://schema.org/name"
	listItem = "http://schema.org/ListItem"
)

func TestAddIsSetSemantics(t *testing.T) {
	s := newTestStore(t)

	tr := NewTriple(IRI("http://x/a"), IRI(typ), IRI(listItem))
	added, err := s.Add(tr)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(tr)
	require.NoError(t, err)
	assert.False(t, added, "second insert of the same triple must be a no-op")
	assert.Equal(t, uint64(1), s.Count())

	ok, err := s.Has(tr)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddBatchCountsOnlyNewTriples(t *testing.T) {
	s := newTestStore(t)

	a := NewTriple(IRI("http://x/a"), IRI(name), Literal("A"))
	b := NewTriple(IRI("http://x/b"), IRI(name), LangLiteral("B", "en"))
	_, err := s.Add(a)
	require.NoError(t, err)

	n, err := s.AddBatch([]Triple{a, b, b})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), s.Count())
}

func TestAddBatchRejectsInvalidTripleAtomically(t *testing.T) {
	s := newTestStore(t)

	good := NewTriple(IRI("http://x/a"), IRI(name), Literal("A"))
	bad := NewTriple(Literal("not a subject"), IRI(name), Literal("A"))

	_, err := s.AddBatch([]Triple{good, bad})
	require.ErrorIs(t, err, ErrInvalidTriple)
	assert.Equal(t, uint64(0), s.Count())

	ok, err := s.Has(good)
	require.NoError(t, err)
	assert.False(t, ok, "nothing from a rejected batch may be written")
}

func TestScanPatterns(t *testing.T) {
	s := newTestStore(t)

	list := Blank("listregistry")
	triples := []Triple{
		NewTriple(list, IRI("http://schema.org/itemListElement"), IRI("http://x/p1")),
		NewTriple(list, IRI("http://schema.org/itemListElement"), IRI("http://x/p2")),
		NewTriple(IRI("http://x/p1"), IRI(typ), IRI(listItem)),
		NewTriple(IRI("http://x/p2"), IRI(typ), IRI(listItem)),
		NewTriple(IRI("http://x/p2"), IRI(name), TypedLiteral("Two", "http://www.w3.org/2001/XMLSchema#string")),
	}
	_, err := s.AddBatch(triples)
	require.NoError(t, err)

	objs, err := s.Objects(list, IRI("http://schema.org/itemListElement"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Term{IRI("http://x/p1"), IRI("http://x/p2")}, objs)

	subs, err := s.Subjects(IRI(typ), IRI(listItem))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Term{IRI("http://x/p1"), IRI("http://x/p2")}, subs)

	var byPred int
	for _, err := range s.Scan(Term{}, IRI(name), Term{}) {
		require.NoError(t, err)
		byPred++
	}
	assert.Equal(t, 1, byPred)

	// Subject and object bound, predicate free.
	var so []Triple
	for tr, err := range s.Scan(IRI("http://x/p1"), Term{}, IRI(listItem)) {
		require.NoError(t, err)
		so = append(so, tr)
	}
	require.Len(t, so, 1)
	assert.Equal(t, IRI(typ), so[0].Predicate)

	all, err := s.Triples()
	require.NoError(t, err)
	assert.ElementsMatch(t, triples, all)
}

func TestScanDoesNotMatchLongerValueWithSamePrefix(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddBatch([]Triple{
		NewTriple(IRI("http://x/a"), IRI(name), Literal("short")),
		NewTriple(IRI("http://x/ab"), IRI(name), Literal("long")),
	})
	require.NoError(t, err)

	objs, err := s.Objects(IRI("http://x/a"), IRI(name))
	require.NoError(t, err)
	assert.Equal(t, []Term{Literal("short")}, objs)
}

func TestDiskStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(DiskConfig(dir))
	require.NoError(t, err)
	_, err = s.AddBatch([]Triple{
		NewTriple(IRI("http://x/a"), IRI(name), Literal("A")),
		NewTriple(Blank("b0"), IRI(name), Literal("nul\x00byte")),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(DiskConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, uint64(2), s.Count())
	ok, err := s.Has(NewTriple(Blank("b0"), IRI(name), Literal("nul\x00byte")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{InMemory: true, ReadOnly: true}).Validate())
}
