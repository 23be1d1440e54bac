package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crateEntry(t *testing.T, f *fakeFetcher, uri string) *Entry {
	t.Helper()
	v := NewValidator(f, acceptAll{}, quietLogger())
	e := NewEntry("a.csv", 1, uri, "x")
	v.Classify(context.Background(), e)
	require.Equal(t, TypeCrate, e.Type)
	return e
}

func TestResolveListCollectsEveryProfile(t *testing.T) {
	f := newFakeFetcher()
	f.docs["https://p/1"] = profileDoc("https://p/1")
	f.docs["https://p/2"] = profileDoc("https://w3id.org/p/2")
	f.docs["https://p/notprofile"] = `{"@graph": [{"@id": "x"}]}`
	f.docs["https://c/crate/"] = crateDoc(`[
		{"@id": "https://w3id.org/ro/crate/1.1"},
		{"@id": "https://p/notprofile"},
		{"@id": "https://p/1"},
		"https://p/2",
		{"name": "no id"},
		{"@id": "https://p/2"},
		{"@id": "https://p/1"}
	]`)

	e := crateEntry(t, f, "https://c/crate/")
	NewConformsToResolver(f, quietLogger()).Resolve(context.Background(), e)

	assert.Equal(t, Approved, e.Disposition)
	assert.Equal(t, []string{"https://p/1", "https://w3id.org/p/2"}, e.ProfileProp)
	assert.Equal(t, "https://p/1,https://w3id.org/p/2", e.Profiles())
}

func TestResolveListDotRelativeCandidate(t *testing.T) {
	f := newFakeFetcher()
	f.docs["https://c/crate/profile.json"] = profileDoc("./")
	f.docs["https://c/crate/"] = crateDoc(`[{"@id": "./profile.json"}]`)

	e := crateEntry(t, f, "https://c/crate/")
	NewConformsToResolver(f, quietLogger()).Resolve(context.Background(), e)

	assert.Equal(t, Approved, e.Disposition)
	assert.Equal(t, []string{"https://c/crate/profile.json"}, e.ProfileProp)
}

func TestResolveListWithoutProfile(t *testing.T) {
	f := newFakeFetcher()
	f.docs["https://c/crate"] = crateDoc(`[{"@id": "https://down/p"}, {"@id": "relative/p"}]`)

	e := crateEntry(t, f, "https://c/crate")
	NewConformsToResolver(f, quietLogger()).Resolve(context.Background(), e)

	assert.Equal(t, Warning, e.Disposition)
	assert.Equal(t, ReasonNoProfile, e.Reason)
	assert.Equal(t, "resolution", e.Kind)
	assert.Empty(t, e.ProfileProp)
}

func TestResolveSingleObject(t *testing.T) {
	cases := []struct {
		name        string
		conformsTo  string
		disposition Disposition
		reason      string
	}{
		{"profile", `{"@id": "https://p/1"}`, Approved, ""},
		{"not a profile", `{"@id": "https://p/notprofile"}`, Warning, ReasonNotProfile},
		{"unresolvable", `{"@id": "https://down/p"}`, Warning, ReasonInvalidURI},
		{"no id", `{"name": "x"}`, Warning, ReasonInvalidURI},
		{"scalar string", `"https://p/1"`, Warning, ReasonInvalidURI},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFakeFetcher()
			f.docs["https://p/1"] = profileDoc("https://p/1")
			f.docs["https://p/notprofile"] = `{"@graph": [{"@id": "x"}]}`
			f.docs["https://c/crate"] = crateDoc(c.conformsTo)

			e := crateEntry(t, f, "https://c/crate")
			NewConformsToResolver(f, quietLogger()).Resolve(context.Background(), e)

			assert.Equal(t, c.disposition, e.Disposition)
			assert.Equal(t, c.reason, e.Reason)
			if c.disposition == Approved {
				assert.Equal(t, []string{"https://p/1"}, e.ProfileProp)
			}
		})
	}
}

func TestResolveAllContinuesAfterFailure(t *testing.T) {
	f := newFakeFetcher()
	f.docs["https://p/1"] = profileDoc("https://p/1")
	f.docs["https://c/bad"] = crateDoc(`{"@id": "https://boom/p"}`)
	f.docs["https://c/good"] = crateDoc(`{"@id": "https://p/1"}`)
	f.panicOn = "https://boom/p"

	bad := crateEntry(t, f, "https://c/bad")
	good := crateEntry(t, f, "https://c/good")
	profile := NewEntry("a.csv", 3, "https://p/1", "x")

	assert.NotPanics(t, func() {
		NewConformsToResolver(f, quietLogger()).ResolveAll(context.Background(), []*Entry{bad, profile, good})
	})

	assert.Equal(t, Error, bad.Disposition)
	assert.Equal(t, ReasonResolutionFailed, bad.Reason)
	assert.Equal(t, "resolution", bad.Kind)
	assert.Equal(t, Approved, good.Disposition)
	assert.Equal(t, Pending, profile.Disposition, "non-crate entries are left alone")
}
