package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryTriples(profile string) []triplestore.Triple {
	root := triplestore.IRI("https://registry.example.org/")
	list := triplestore.Blank(vocab.ListRegistry)
	item := triplestore.IRI(profile)
	iri := triplestore.IRI
	return []triplestore.Triple{
		triplestore.NewTriple(root, iri(vocab.RDFType), iri(vocab.CreativeWork)),
		triplestore.NewTriple(root, iri(vocab.HasPart), list),
		triplestore.NewTriple(list, iri(vocab.RDFType), iri(vocab.ItemList)),
		triplestore.NewTriple(list, iri(vocab.Name), triplestore.Literal(vocab.ListRegistryName)),
		triplestore.NewTriple(list, iri(vocab.ItemListElement), item),
		triplestore.NewTriple(item, iri(vocab.RDFType), iri(vocab.ListItem)),
		triplestore.NewTriple(item, iri(vocab.Item), item),
		triplestore.NewTriple(iri("https://example.org/profiles/a"), iri(vocab.Name), triplestore.Literal("Profile A")),
		triplestore.NewTriple(iri("https://example.org/profiles/a"), iri(vocab.Schema+"author"), triplestore.Blank("m1_b0")),
		triplestore.NewTriple(iri("https://example.org/profiles/a"), iri(vocab.Schema+"text"), triplestore.Literal(strings.Repeat("x", 500))),
	}
}

func TestD3Transformer(t *testing.T) {
	graph := NewD3Transformer().Transform(registryTriples("https://p/a.json"))

	byID := map[string]D3Node{}
	for _, n := range graph.Nodes {
		byID[n.ID] = n
	}
	require.Len(t, graph.Nodes, 5)

	assert.Equal(t, "root", byID["https://registry.example.org/"].Group)

	list := byID["_:listregistry"]
	assert.Equal(t, "registry", list.Group)
	assert.Equal(t, vocab.ListRegistryName, list.Name)
	assert.Equal(t, "blank", list.Kind)

	item := byID["https://p/a.json"]
	assert.Equal(t, "profile", item.Group)
	assert.Equal(t, "a.json", item.Name)

	profile := byID["https://example.org/profiles/a"]
	assert.Equal(t, "Profile A", profile.Name)
	assert.NotContains(t, profile.Metadata, "text", "long literals are dropped")

	rels := map[string]string{}
	for _, l := range graph.Links {
		rels[l.Relation] = l.Type
		assert.NotEqual(t, l.Source, l.Target, "self links are dropped")
	}
	assert.Equal(t, map[string]string{"hasPart": "registry", "itemListElement": "registry", "author": "document"}, rels)
}

func TestD3TransformerIgnoredPredicates(t *testing.T) {
	tr := NewD3Transformer()
	tr.IgnoredPredicates[vocab.Schema+"author"] = true
	graph := tr.Transform(registryTriples("https://p/a.json"))
	for _, l := range graph.Links {
		assert.NotEqual(t, "author", l.Relation)
	}

	empty := NewD3Transformer().Transform(nil)
	assert.Empty(t, empty.Nodes)
	assert.NotNil(t, empty.Links)
}

func TestExportAndSaveD3Graph(t *testing.T) {
	store, err := triplestore.Open(triplestore.DefaultConfig())
	require.NoError(t, err)
	defer store.Close()
	_, err = store.AddBatch(registryTriples("https://p/a.json"))
	require.NoError(t, err)

	graph, err := ExportD3(store)
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 5)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, SaveD3Graph(graph, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded D3Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, len(graph.Links), len(decoded.Links))
}
