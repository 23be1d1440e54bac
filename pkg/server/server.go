// Package server exposes a finished registry build over a read-only REST API.
package server

import (
	"net/http"

	"github.com/duynguyendang/profile-registry/pkg/knowledge"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/gin-gonic/gin"
)

// Server holds the state for the REST API server.
type Server struct {
	graph  *knowledge.Assembler
	report *registry.Report
	index  []byte
	router *gin.Engine
}

// NewServer creates a new Server instance. report and index may be nil when
// the build folder lacks them.
func NewServer(graph *knowledge.Assembler, report *registry.Report, index []byte) *Server {
	r := gin.Default()
	s := &Server{
		graph:  graph,
		report: report,
		index:  index,
		router: r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler returns the router, for embedding in another http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/v1/report", s.handleReport)
	s.router.GET("/v1/entries", s.handleEntries)
	s.router.GET("/v1/entry", s.handleEntry)
	s.router.GET("/v1/items", s.handleItems)
	s.router.GET("/v1/graph", s.handleGraph)
	s.router.GET("/v1/graph/d3", s.handleGraphD3)
	s.router.POST("/v1/query", s.handleQuery)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
