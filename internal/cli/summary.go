package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/duynguyendang/profile-registry/pkg/registry"
)

var (
	approvedColor = lipgloss.Color("#10B981")
	warningColor  = lipgloss.Color("#F59E0B")
	errorColor    = lipgloss.Color("#EF4444")
	mutedColor    = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	approvedStyle = lipgloss.NewStyle().Foreground(approvedColor).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

// renderSummary formats the counts of a report and every rejected row.
func renderSummary(title string, r *registry.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')

	counts := fmt.Sprintf("%s  %s  %s  %s",
		mutedStyle.Render(fmt.Sprintf("total %d", r.Counts.Total)),
		approvedStyle.Render(fmt.Sprintf("approved %d", r.Counts.Approved)),
		warningStyle.Render(fmt.Sprintf("warnings %d", r.Counts.Warnings)),
		errorStyle.Render(fmt.Sprintf("errors %d", r.Counts.Errors)),
	)
	b.WriteString(boxStyle.Render(counts))
	b.WriteByte('\n')

	for _, e := range r.Warnings {
		b.WriteString(rejectedLine(warningStyle, "WARN", e))
	}
	for _, e := range r.Errors {
		b.WriteString(rejectedLine(errorStyle, "ERROR", e))
	}
	if len(r.Skipped) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d malformed rows or files skipped", len(r.Skipped))))
		b.WriteByte('\n')
	}
	return b.String()
}

func rejectedLine(style lipgloss.Style, tag string, e *registry.Entry) string {
	line := fmt.Sprintf("%s %s:%d %s: %s", style.Render(tag), e.Source, e.Row, e.SubmittedURI, e.Reason)
	if e.Suggestion != "" {
		line += mutedStyle.Render(fmt.Sprintf(" (did you mean %s?)", e.Suggestion))
	}
	return line + "\n"
}
