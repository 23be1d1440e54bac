package registry

import (
	"time"

	"github.com/agext/levenshtein"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// Counts summarises dispositions.
type Counts struct {
	Total    int `json:"total" yaml:"total"`
	Approved int `json:"approved" yaml:"approved"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
}

// Report is the classification report of one run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	DataRoot    string    `json:"data_root,omitempty" yaml:"data_root,omitempty"`
	Files       []string  `json:"files,omitempty" yaml:"files,omitempty"`
	Skipped     []string  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Counts      Counts    `json:"counts" yaml:"counts"`
	Approved    []*Entry  `json:"approved" yaml:"approved"`
	Warnings    []*Entry  `json:"warnings" yaml:"warnings"`
	Errors      []*Entry  `json:"errors" yaml:"errors"`
}

// BuildReport groups entries by disposition. Errored entries whose URI is a
// near miss of an approved one get a suggestion.
func BuildReport(runID string, at time.Time, entries []*Entry) *Report {
	r := &Report{
		RunID:       runID,
		GeneratedAt: at,
		Approved:    []*Entry{},
		Warnings:    []*Entry{},
		Errors:      []*Entry{},
	}
	for _, e := range entries {
		r.Counts.Total++
		switch e.Disposition {
		case Approved:
			r.Counts.Approved++
			r.Approved = append(r.Approved, e)
		case Warning:
			r.Counts.Warnings++
			r.Warnings = append(r.Warnings, e)
		case Error:
			r.Counts.Errors++
			r.Errors = append(r.Errors, e)
		}
	}
	for _, e := range r.Errors {
		e.Suggestion = suggest(e.SubmittedURI, r.Approved)
	}
	return r
}

// Lookup returns the entry whose current or submitted URI is uri.
func (r *Report) Lookup(uri string) (*Entry, bool) {
	for _, group := range [][]*Entry{r.Approved, r.Warnings, r.Errors} {
		for _, e := range group {
			if e.URI == uri || e.SubmittedURI == uri {
				return e, true
			}
		}
	}
	return nil, false
}

func suggest(uri string, approved []*Entry) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, a := range approved {
		for _, candidate := range []string{a.SubmittedURI, a.URI} {
			if candidate == "" || candidate == uri {
				continue
			}
			if d := levenshtein.Distance(uri, candidate, nil); d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	return best
}
