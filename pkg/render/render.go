// Package render produces the HTML listing of the registry.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
)

// IndexTemplate is the template of the registry listing page.
const IndexTemplate = "index_registry.html"

//go:embed templates
var templateFS embed.FS

// Dataset is one approved registry entry as shown on the page.
type Dataset struct {
	URI         string
	Name        string
	Description string
	Version     string
	License     string
	Contact     string
	Profiles    []string
}

// Context is the data every page template receives.
type Context struct {
	Title       string
	Description string
	Theme       string
	Datasets    []Dataset
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	return NewFromFS(templateFS, "templates/*.html")
}

// NewFromFS parses templates matching pattern in fsys.
func NewFromFS(fsys fs.FS, pattern string) (*Renderer, error) {
	tmpl, err := template.ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render executes the named template with ctx.
func (r *Renderer) Render(name string, ctx Context) (string, error) {
	if r.templates.Lookup(name) == nil {
		return "", fmt.Errorf("template %q: %w", name, errs.ErrNotFound)
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
