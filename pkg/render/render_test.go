package render

import (
	"errors"
	"testing"
	"testing/fstest"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIndex(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	out, err := r.Render(IndexTemplate, Context{
		Title:       "Profile registry",
		Description: "All <known> profiles",
		Theme:       "main",
		Datasets: []Dataset{
			{URI: "https://p/a", Name: "Workflow RO-Crate", Version: "1.0", Contact: "jane@example.org",
				Profiles: []string{"https://w3id.org/workflowhub/workflow-ro-crate/1.0"}},
			{URI: "https://p/b", Contact: "https://orcid.org/0000-0002-1825-0097", License: "MIT"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Profile registry</title>")
	assert.Contains(t, out, "All &lt;known&gt; profiles")
	assert.Contains(t, out, "2 registered profiles")
	assert.Contains(t, out, `<a href="https://p/a">Workflow RO-Crate</a> <small>v1.0</small>`)
	assert.Contains(t, out, `<a href="https://p/b">https://p/b</a>`)
	assert.Contains(t, out, "https://w3id.org/workflowhub/workflow-ro-crate/1.0")
	assert.Contains(t, out, "License: MIT")
}

func TestRenderEmptyRegistry(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	out, err := r.Render(IndexTemplate, Context{Title: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, out, "No profiles registered yet.")
	assert.Contains(t, out, "0 registered profiles")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	_, err = r.Render("nope.html", Context{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestNewFromFS(t *testing.T) {
	fsys := fstest.MapFS{"t/hello.html": {Data: []byte(`Hello {{.Title}}`)}}
	r, err := NewFromFS(fsys, "t/*.html")
	require.NoError(t, err)
	out, err := r.Render("hello.html", Context{Title: "you"})
	require.NoError(t, err)
	assert.Equal(t, "Hello you", out)

	_, err = NewFromFS(fsys, "missing/*.html")
	assert.Error(t, err)
}
