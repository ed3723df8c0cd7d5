package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// Badge colours.
var (
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
	colourMuted   = lipgloss.Color("#6C7086")
)

var (
	badgeStyle   = lipgloss.NewStyle().Bold(true).Width(10)
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
)

// outcomeBadge renders a fixity outcome.
func outcomeBadge(o domain.Outcome) string {
	switch o {
	case domain.OutcomeOK:
		return badgeStyle.Foreground(colourSuccess).Render(o.String())
	case domain.OutcomeMissing:
		return badgeStyle.Foreground(colourWarning).Render(o.String())
	default:
		return badgeStyle.Foreground(colourError).Render(o.String())
	}
}

// statusBadge renders a per-file ingest status.
func statusBadge(s domain.FileStatus) string {
	switch s {
	case domain.FileIngested:
		return badgeStyle.Foreground(colourSuccess).Render(string(s))
	case domain.FileDuplicate:
		return badgeStyle.Foreground(colourMuted).Render(string(s))
	default:
		return badgeStyle.Foreground(colourError).Render(string(s))
	}
}
