package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	approved := NewEntry("a.csv", 1, "https://w3id.org/profiles/workflow", "x")
	approved.AddProfile("https://w3id.org/profiles/workflow")
	require.True(t, approved.Approve())

	typo := NewEntry("a.csv", 2, "https://w3id.org/profiles/workflw", "x")
	typo.Fail(ReasonInvalidURI, nil)

	far := NewEntry("a.csv", 3, "https://elsewhere.example.com/x", "x")
	far.Fail(ReasonInvalidURI, nil)

	dup := NewEntry("a.csv", 4, "https://w3id.org/profiles/workflow", "x")
	dup.Warn(ReasonDuplicate, nil)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := BuildReport("run-1", at, []*Entry{approved, typo, far, dup})

	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, at, r.GeneratedAt)
	assert.Equal(t, Counts{Total: 4, Approved: 1, Warnings: 1, Errors: 2}, r.Counts)
	assert.Equal(t, []*Entry{approved}, r.Approved)
	assert.Equal(t, []*Entry{dup}, r.Warnings)
	assert.Equal(t, []*Entry{typo, far}, r.Errors)

	assert.Equal(t, "https://w3id.org/profiles/workflow", typo.Suggestion)
	assert.Empty(t, far.Suggestion)

	got, ok := r.Lookup("https://w3id.org/profiles/workflw")
	assert.True(t, ok)
	assert.Same(t, typo, got)
	_, ok = r.Lookup("https://nope")
	assert.False(t, ok)
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport("run", time.Now(), nil)
	assert.Equal(t, Counts{}, r.Counts)
	assert.NotNil(t, r.Approved)
	assert.NotNil(t, r.Warnings)
	assert.NotNil(t, r.Errors)
}
