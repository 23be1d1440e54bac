// Package registry validates registry rows and drives them to a terminal
// disposition: approved, warning or error.
package registry

import (
	"strings"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
)

// Disposition is the outcome of validating an entry.
type Disposition string

const (
	Pending  Disposition = "pending"
	Approved Disposition = "approved"
	Warning  Disposition = "warning"
	Error    Disposition = "error"
)

// Type is the classification of the document behind an entry.
type Type string

const (
	TypeUnclassified Type = "unclassified"
	TypeProfile      Type = "profile"
	TypeCrate        Type = "crate"
	TypeError        Type = "error"
)

// Rejection reasons. They appear verbatim in the report.
const (
	ReasonContact          = "contact invalid"
	ReasonDuplicate        = "URI already in registry"
	ReasonInvalidURI       = "URI is not valid"
	ReasonType             = "Type is not profile or crate"
	ReasonNoProfile        = "No profile found in conformsTo prop"
	ReasonNotProfile       = "URI is not a profile"
	ReasonResolutionFailed = "conformsTo resolution failed"
)

// Entry is one row of a registry CSV file.
type Entry struct {
	Source       string         `json:"source" yaml:"source"`
	Row          int            `json:"row" yaml:"row"`
	URI          string         `json:"uri" yaml:"uri"`
	SubmittedURI string         `json:"submitted_uri,omitempty" yaml:"submitted_uri,omitempty"`
	Contact      string         `json:"contact" yaml:"contact"`
	Type         Type           `json:"type" yaml:"type"`
	ProfileProp  []string       `json:"profile_prop,omitempty" yaml:"profile_prop,omitempty"`
	ConformsTo   any            `json:"conforms_to,omitempty" yaml:"conforms_to,omitempty"`
	Disposition  Disposition    `json:"disposition" yaml:"disposition"`
	Reason       string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	Kind         string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	GraphError   string         `json:"graph_error,omitempty" yaml:"graph_error,omitempty"`
	Suggestion   string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// NewEntry creates a pending, unclassified entry.
func NewEntry(source string, row int, uri, contact string) *Entry {
	uri = strings.TrimSpace(uri)
	return &Entry{
		Source:       source,
		Row:          row,
		URI:          uri,
		SubmittedURI: uri,
		Contact:      strings.TrimSpace(contact),
		Type:         TypeUnclassified,
		Disposition:  Pending,
	}
}

// Terminal reports whether the disposition has been decided.
func (e *Entry) Terminal() bool { return e.Disposition != Pending }

// AddProfile records a profile identifier, keeping order and dropping repeats.
func (e *Entry) AddProfile(id string) {
	if id == "" {
		return
	}
	for _, p := range e.ProfileProp {
		if p == id {
			return
		}
	}
	e.ProfileProp = append(e.ProfileProp, id)
}

// Profiles returns ProfileProp joined the way the report prints it.
func (e *Entry) Profiles() string { return strings.Join(e.ProfileProp, ",") }

// Approve moves a pending entry to Approved. It refuses when the entry is
// already terminal or has no profile identifier.
func (e *Entry) Approve() bool {
	if e.Terminal() || len(e.ProfileProp) == 0 {
		return false
	}
	e.Disposition = Approved
	return true
}

// Warn moves a pending entry to Warning.
func (e *Entry) Warn(reason string, cause error) bool {
	return e.reject(Warning, reason, cause)
}

// Fail moves a pending entry to Error.
func (e *Entry) Fail(reason string, cause error) bool {
	if e.Terminal() {
		return false
	}
	if e.Type == TypeUnclassified {
		e.Type = TypeError
	}
	return e.reject(Error, reason, cause)
}

func (e *Entry) reject(d Disposition, reason string, cause error) bool {
	if e.Terminal() {
		return false
	}
	e.Disposition = d
	e.Reason = reason
	e.Kind = errs.Kind(cause)
	return true
}
