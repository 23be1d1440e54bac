package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/duynguyendang/profile-registry/pkg/knowledge"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/duynguyendang/profile-registry/pkg/vocab"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, withReport bool) *MCPServer {
	t.Helper()
	store, err := triplestore.Open(triplestore.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	graph, err := knowledge.New(store, nil, knowledge.WithRoot("https://registry.example.org/"))
	require.NoError(t, err)
	_, err = store.Add(triplestore.NewTriple(
		triplestore.Blank(vocab.ListRegistry), triplestore.IRI(vocab.ItemListElement), triplestore.IRI("https://p/a.json")))
	require.NoError(t, err)

	ms := &MCPServer{graph: graph}
	if withReport {
		e := registry.NewEntry("a.csv", 1, "https://p/a.json", "jane@example.org")
		e.AddProfile("https://p/a.json")
		e.Approve()
		ms.report = registry.BuildReport("run-1", time.Unix(0, 0).UTC(), []*registry.Entry{e})
	}
	return ms
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServerRegisters(t *testing.T) {
	ms := newTestServer(t, true)
	assert.NotNil(t, NewServer(ms.graph, ms.report, "test"))
}

func TestLookupEntry(t *testing.T) {
	ms := newTestServer(t, true)
	ctx := context.Background()

	res, err := ms.handleLookupEntry(ctx, callTool(map[string]any{"uri": " https://p/a.json "}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	var e registry.Entry
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &e))
	assert.Equal(t, registry.Approved, e.Disposition)

	res, err = ms.handleLookupEntry(ctx, callTool(map[string]any{"uri": "https://nope"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "not in the registry")

	res, err = ms.handleLookupEntry(ctx, callTool(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestLookupEntryWithoutReport(t *testing.T) {
	ms := newTestServer(t, false)
	res, err := ms.handleLookupEntry(context.Background(), callTool(map[string]any{"uri": "https://p/a.json"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListProfiles(t *testing.T) {
	ms := newTestServer(t, false)
	res, err := ms.handleListProfiles(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Equal(t, "https://p/a.json", text(t, res))
}

func TestScanTriples(t *testing.T) {
	ms := newTestServer(t, false)
	ctx := context.Background()

	res, err := ms.handleScanTriples(ctx, callTool(map[string]any{"subject": "_:" + vocab.ListRegistry, "predicate": vocab.ItemListElement}))
	require.NoError(t, err)
	assert.Equal(t, "_:listregistry <"+vocab.ItemListElement+"> <https://p/a.json> .", text(t, res))

	res, err = ms.handleScanTriples(ctx, callTool(map[string]any{"subject": "https://nope"}))
	require.NoError(t, err)
	assert.Equal(t, "No triples found.", text(t, res))

	res, err = ms.handleScanTriples(ctx, callTool(map[string]any{}))
	require.NoError(t, err)
	assert.Len(t, strings.Split(text(t, res), "\n"), 6)
}

func TestResources(t *testing.T) {
	ms := newTestServer(t, true)
	ctx := context.Background()

	var req mcp.ReadResourceRequest
	req.Params.URI = ReportURI
	contents, err := ms.handleReport(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	report := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "application/json", report.MIMEType)
	assert.Contains(t, report.Text, `"run_id": "run-1"`)

	req.Params.URI = GraphURI
	contents, err = ms.handleGraph(ctx, req)
	require.NoError(t, err)
	graph := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, GraphURI, graph.URI)
	assert.Contains(t, graph.Text, vocab.ListRegistryName)

	_, err = newTestServer(t, false).handleReport(ctx, req)
	assert.Error(t, err)
}

func TestQueryGraph(t *testing.T) {
	ms := newTestServer(t, false)
	ctx := context.Background()

	res, err := ms.handleQueryGraph(ctx, callTool(map[string]any{
		"query": "triples(_:listregistry, <" + vocab.ItemListElement + ">, P)",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"P": "https://p/a.json"`)

	res, err = ms.handleQueryGraph(ctx, callTool(map[string]any{"query": "regex(A, \"x\")"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = ms.handleQueryGraph(ctx, callTool(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
