package server

import (
	"net/http"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/datalog"
	"github.com/duynguyendang/profile-registry/pkg/export"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/gin-gonic/gin"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// graphFormats maps the ?format= values of /v1/graph to content types.
var graphFormats = map[string]string{
	"turtle": "text/turtle; charset=utf-8",
	"jsonld": "application/ld+json",
	"rdfxml": "application/rdf+xml",
}

// handleIndex serves the HTML listing of the build.
func (s *Server) handleIndex(c *gin.Context) {
	if len(s.index) == 0 {
		handleError(c, errors.NewAppError(http.StatusNotFound, "No listing in this build", errors.ErrNotFound))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.index)
}

// handleReport returns the whole classification report.
func (s *Server) handleReport(c *gin.Context) {
	if s.report == nil {
		handleError(c, errors.NewAppError(http.StatusNotFound, "No report in this build", errors.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, s.report)
}

// handleEntries lists entries, optionally filtered by ?disposition=approved|warning|error.
func (s *Server) handleEntries(c *gin.Context) {
	if s.report == nil {
		handleError(c, errors.NewAppError(http.StatusNotFound, "No report in this build", errors.ErrNotFound))
		return
	}

	var entries []*registry.Entry
	switch registry.Disposition(strings.ToLower(c.Query("disposition"))) {
	case "":
		entries = append(entries, s.report.Approved...)
		entries = append(entries, s.report.Warnings...)
		entries = append(entries, s.report.Errors...)
	case registry.Approved:
		entries = s.report.Approved
	case registry.Warning:
		entries = s.report.Warnings
	case registry.Error:
		entries = s.report.Errors
	default:
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Unknown disposition", errors.ErrInvalidInput))
		return
	}
	if entries == nil {
		entries = []*registry.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "entries": entries})
}

// handleEntry returns the entry registered under ?uri=.
func (s *Server) handleEntry(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing uri parameter", errors.ErrInvalidInput))
		return
	}
	if s.report == nil {
		handleError(c, errors.ErrNotFound)
		return
	}
	e, ok := s.report.Lookup(uri)
	if !ok {
		handleError(c, errors.NewAppError(http.StatusNotFound, "URI not in registry", errors.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, e)
}

// handleItems returns the URIs listed in the registry graph.
func (s *Server) handleItems(c *gin.Context) {
	items, err := s.graph.ListItems()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// handleGraph serializes the graph in ?format=turtle (default), jsonld or rdfxml.
func (s *Server) handleGraph(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "turtle"))
	contentType, ok := graphFormats[format]
	if !ok {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Unknown graph format", errors.ErrInvalidInput))
		return
	}

	var body string
	var err error
	switch format {
	case "jsonld":
		body, err = s.graph.ToJSONLD()
	case "rdfxml":
		body, err = s.graph.ToRDFXML()
	default:
		body, err = s.graph.ToTurtle()
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, []byte(body))
}

// handleGraphD3 returns the graph in D3 force-layout form.
func (s *Server) handleGraphD3(c *gin.Context) {
	graph, err := export.ExportD3(s.graph.Store())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// handleQuery evaluates a datalog query over the registry graph.
func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusOK, datalog.Result{Vars: []string{}, Rows: []datalog.Row{}})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	limit = min(limit, maxQueryLimit)

	res, err := datalog.Evaluate(c.Request.Context(), s.graph.Store(), req.Query, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
