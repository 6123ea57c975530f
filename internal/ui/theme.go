package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/tdx/internal/config"
	"github.com/oakwood-commons/tdx/internal/formatter"
)

// Theme defines the colors used by the task view.
type Theme struct {
	HeaderFG    color.Color // Table header and title bar text
	HeaderBG    color.Color // Table header and title bar background
	SelectedFG  color.Color // Selected row foreground
	SelectedBG  color.Color // Selected row background
	HighlightFG color.Color // Search match foreground
	HighlightBG color.Color // Search match background
	Muted       color.Color // Placeholders, help, inactive tabs
	Error       color.Color // Error banner and status
	Success     color.Color // Completed badge
	Border      color.Color // Input and separator lines
}

// DefaultTheme is used when no configuration is available.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:    lipgloss.Color("12"),
		HeaderBG:    lipgloss.Color("236"),
		SelectedFG:  lipgloss.Color("229"),
		SelectedBG:  lipgloss.Color("57"),
		HighlightFG: lipgloss.Color("0"),
		HighlightBG: lipgloss.Color("220"),
		Muted:       lipgloss.Color("244"),
		Error:       lipgloss.Color("203"),
		Success:     lipgloss.Color("42"),
		Border:      lipgloss.Color("240"),
	}
}

// ThemeFromConfig converts a configured theme; empty fields keep the default palette.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	th := DefaultTheme()
	set := func(dst *color.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&th.HeaderFG, cfg.HeaderFG)
	set(&th.HeaderBG, cfg.HeaderBG)
	set(&th.SelectedFG, cfg.SelectedFG)
	set(&th.SelectedBG, cfg.SelectedBG)
	set(&th.HighlightFG, cfg.HighlightFG)
	set(&th.HighlightBG, cfg.HighlightBG)
	set(&th.Muted, cfg.Muted)
	set(&th.Error, cfg.Error)
	set(&th.Success, cfg.Success)
	set(&th.Border, cfg.Border)
	return th
}

// TableColors maps the theme onto formatter colors for non-interactive output.
func (t Theme) TableColors() formatter.TableColors {
	return formatter.TableColors{
		HeaderFG:    t.HeaderFG,
		HeaderBG:    t.HeaderBG,
		HighlightFG: t.HighlightFG,
		HighlightBG: t.HighlightBG,
		Muted:       t.Muted,
		Success:     t.Success,
	}
}

type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	activeTab lipgloss.Style
	tab       lipgloss.Style
	highlight lipgloss.Style
	muted     lipgloss.Style
	err       lipgloss.Style
	success   lipgloss.Style
	help      lipgloss.Style
}

func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:     plain.Bold(true),
			label:     plain,
			activeTab: plain,
			tab:       plain,
			highlight: plain.Underline(true),
			muted:     plain,
			err:       plain,
			success:   plain,
			help:      plain,
		}
	}
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(t.HeaderFG).Background(t.HeaderBG).Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(t.HeaderFG),
		activeTab: lipgloss.NewStyle().Bold(true).Foreground(t.SelectedFG).Background(t.SelectedBG).Padding(0, 1),
		tab:       lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),
		highlight: lipgloss.NewStyle().Foreground(t.HighlightFG).Background(t.HighlightBG),
		muted:     lipgloss.NewStyle().Foreground(t.Muted),
		err:       lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		success:   lipgloss.NewStyle().Foreground(t.Success),
		help:      lipgloss.NewStyle().Foreground(t.Muted),
	}
}
