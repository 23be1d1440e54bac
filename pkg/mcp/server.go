// Package mcp exposes a registry build to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/datalog"
	"github.com/duynguyendang/profile-registry/pkg/knowledge"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ReportURI = "registry://report"
	GraphURI  = "registry://graph.ttl"

	maxScanResults = 50
)

// MCPServer wraps a loaded registry graph and its report.
type MCPServer struct {
	graph  *knowledge.Assembler
	report *registry.Report
}

// NewServer registers the registry resources and tools on a fresh MCP server.
// report may be nil when the build has no report.json.
func NewServer(graph *knowledge.Assembler, report *registry.Report, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"profile-registry",
		version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)
	ms := &MCPServer{graph: graph, report: report}

	// --- Resources ---

	s.AddResource(
		mcp.NewResource(
			ReportURI,
			"Classification Report",
			mcp.WithResourceDescription("Approved, warning and error entries of the last build"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleReport,
	)

	s.AddResource(
		mcp.NewResource(
			GraphURI,
			"Registry Graph",
			mcp.WithResourceDescription("The registry graph in Turtle"),
			mcp.WithMIMEType("text/turtle"),
		),
		ms.handleGraph,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"lookup_entry",
			mcp.WithDescription("Look up the disposition and reason of a submitted URI."),
			mcp.WithString("uri", mcp.Required(), mcp.Description("The URI as submitted or as rewritten")),
		),
		ms.handleLookupEntry,
	)

	s.AddTool(
		mcp.NewTool(
			"list_profiles",
			mcp.WithDescription("List the URIs registered in the registry item list."),
		),
		ms.handleListProfiles,
	)

	s.AddTool(
		mcp.NewTool(
			"scan_triples",
			mcp.WithDescription("Scan graph triples. Empty fields act as wildcards; values are IRIs or _:labels."),
			mcp.WithString("subject", mcp.Description("Subject IRI")),
			mcp.WithString("predicate", mcp.Description("Predicate IRI")),
			mcp.WithString("object", mcp.Description("Object IRI")),
		),
		ms.handleScanTriples,
	)

	s.AddTool(
		mcp.NewTool(
			"query_graph",
			mcp.WithDescription("Run a datalog query over the registry graph, e.g. triples(_:listregistry, <http://schema.org/itemListElement>, P). Upper-case names are variables; <IRIs> and quoted strings are constants; regex(V, \"re\") and A != B filter."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The datalog query")),
			mcp.WithNumber("limit", mcp.Description("Max number of rows (default 50)")),
		),
		ms.handleQueryGraph,
	)

	return s
}

// Run serves the registry on stdio until the client disconnects.
func Run(ctx context.Context, graph *knowledge.Assembler, report *registry.Report, version string) error {
	s := NewServer(graph, report, version)
	slog.InfoContext(ctx, "Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleReport(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if ms.report == nil {
		return nil, fmt.Errorf("no report in this build")
	}
	data, err := json.MarshalIndent(ms.report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (ms *MCPServer) handleGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ttl, err := ms.graph.ToTurtle()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/turtle",
			Text:     ttl,
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleLookupEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	uri, ok := args["uri"].(string)
	if !ok || uri == "" {
		return mcp.NewToolResultError("uri argument required"), nil
	}
	if ms.report == nil {
		return mcp.NewToolResultError("no report in this build"), nil
	}

	e, found := ms.report.Lookup(strings.TrimSpace(uri))
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("%s is not in the registry.", uri)), nil
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal entry"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (ms *MCPServer) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := ms.graph.ListItems()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("The registry is empty."), nil
	}
	return mcp.NewToolResultText(strings.Join(items, "\n")), nil
}

func (ms *MCPServer) handleScanTriples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	s, _ := args["subject"].(string)
	p, _ := args["predicate"].(string)
	o, _ := args["object"].(string)

	var formatted []string
	for t, err := range ms.graph.Store().Scan(termOrAny(s), termOrAny(p), termOrAny(o)) {
		if err != nil {
			continue
		}
		formatted = append(formatted, t.String())
		if len(formatted) >= maxScanResults {
			formatted = append(formatted, "... (truncated)")
			break
		}
	}

	if len(formatted) == 0 {
		return mcp.NewToolResultText("No triples found."), nil
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}

func (ms *MCPServer) handleQueryGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query argument required"), nil
	}
	limit := maxScanResults
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	res, err := datalog.Evaluate(ctx, ms.graph.Store(), query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal results"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// termOrAny reads "_:label" as a blank node, "" as a wildcard and anything
// else as an IRI.
func termOrAny(v string) triplestore.Term {
	switch {
	case v == "":
		return triplestore.Term{}
	case strings.HasPrefix(v, "_:"):
		return triplestore.Blank(v)
	default:
		return triplestore.IRI(v)
	}
}
