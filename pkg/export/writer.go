// Package export writes the build folder: the serialized registry graph,
// the classification report, the warnings log, a D3 graph and the HTML
// listing.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/duynguyendang/profile-registry/pkg/knowledge"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/duynguyendang/profile-registry/pkg/render"
	"gopkg.in/yaml.v3"
)

// Artifact file names inside the build folder.
const (
	FileTurtle     = "registry.ttl"
	FileJSONLD     = "registry.jsonld"
	FileRDFXML     = "registry.rdf"
	FileReport     = "report.json"
	FileReportYAML = "report.yaml"
	FileWarnings   = "warnings.txt"
	FileD3         = "graph.json"
	FileIndex      = "index.html"
)

// Site describes the HTML listing.
type Site struct {
	Title       string
	Description string
	Theme       string
}

// Writer writes build artifacts into one folder.
type Writer struct {
	dir        string
	renderer   *render.Renderer
	site       Site
	reportYAML bool
	logger     *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithSite sets the listing title, description and theme.
func WithSite(s Site) WriterOption { return func(w *Writer) { w.site = s } }

// WithReportYAML also writes report.yaml.
func WithReportYAML(on bool) WriterOption { return func(w *Writer) { w.reportYAML = on } }

// WithWriterLogger sets the logger.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a Writer for dir. renderer may be nil to skip index.html.
func NewWriter(dir string, renderer *render.Renderer, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:      dir,
		renderer: renderer,
		site:     Site{Title: "Profile registry", Theme: "main"},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the build folder.
func (w *Writer) Dir() string { return w.dir }

// Path returns the path of an artifact.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name) }

// Setup creates the build folder. Calling it again is harmless.
func (w *Writer) Setup() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("setup build folder %s: %w", w.dir, err)
	}
	return nil
}

// Write produces every artifact. A failing artifact does not stop the
// others; all failures are returned joined.
func (w *Writer) Write(graph *knowledge.Assembler, report *registry.Report, warnings []string) error {
	if err := w.Setup(); err != nil {
		return err
	}

	var errs []error
	try := func(name string, fn func() error) {
		if err := fn(); err != nil {
			w.logger.Error("could not write artifact", "file", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		w.logger.Debug("wrote artifact", "file", w.Path(name))
	}

	if graph != nil {
		try(FileTurtle, func() error { return w.writeString(FileTurtle, graph.ToTurtle) })
		try(FileJSONLD, func() error { return w.writeString(FileJSONLD, graph.ToJSONLD) })
		try(FileRDFXML, func() error { return w.writeString(FileRDFXML, graph.ToRDFXML) })
		try(FileD3, func() error {
			d3, err := ExportD3(graph.Store())
			if err != nil {
				return err
			}
			return SaveD3Graph(d3, w.Path(FileD3))
		})
	}
	if report != nil {
		try(FileReport, func() error { return w.WriteReport(report) })
		if w.reportYAML {
			try(FileReportYAML, func() error { return w.WriteReportYAML(report) })
		}
	}
	try(FileWarnings, func() error { return w.WriteWarnings(warnings) })
	if w.renderer != nil && report != nil {
		try(FileIndex, func() error { return w.WriteIndex(report) })
	}

	return errors.Join(errs...)
}

func (w *Writer) writeString(name string, produce func() (string, error)) error {
	s, err := produce()
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(name), []byte(s), 0o644)
}

// WriteReport writes report.json.
func (w *Writer) WriteReport(report *registry.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(FileReport), append(data, '\n'), 0o644)
}

// WriteReportYAML writes report.yaml.
func (w *Writer) WriteReportYAML(report *registry.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(FileReportYAML), data, 0o644)
}

// WriteWarnings writes warnings.txt, one warning per line.
func (w *Writer) WriteWarnings(lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.ReplaceAll(l, "\n", " "))
		b.WriteByte('\n')
	}
	return os.WriteFile(w.Path(FileWarnings), []byte(b.String()), 0o644)
}

// WriteIndex renders index.html from the approved entries.
func (w *Writer) WriteIndex(report *registry.Report) error {
	html, err := w.renderer.Render(render.IndexTemplate, render.Context{
		Title:       w.site.Title,
		Description: w.site.Description,
		Theme:       w.site.Theme,
		Datasets:    Datasets(report.Approved),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(FileIndex), []byte(html), 0o644)
}

// Datasets converts approved entries for the listing page.
func Datasets(entries []*registry.Entry) []render.Dataset {
	out := make([]render.Dataset, 0, len(entries))
	for _, e := range entries {
		out = append(out, render.Dataset{
			URI:         e.URI,
			Name:        metaString(e.Metadata["name"]),
			Description: metaString(e.Metadata["description"]),
			Version:     metaString(e.Metadata["version"]),
			License:     metaString(e.Metadata["license"]),
			Contact:     e.Contact,
			Profiles:    e.ProfileProp,
		})
	}
	return out
}

func metaString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := metaString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
