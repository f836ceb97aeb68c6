// Package theme holds the terminal styles shared by hookcfg's help output,
// log formatter and command reports.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors is the palette a Theme is built from.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Blue      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
}

// Theme groups the styles used across the CLI.
type Theme struct {
	Colors Colors

	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold   lipgloss.Style
	Italic lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Code   lipgloss.Style
	Path   lipgloss.Style
}

var palettes = map[string]func() Colors{
	"kanagawa": func() Colors {
		return Colors{
			Green:     lipgloss.AdaptiveColor{Light: "#4E7C5A", Dark: "#98BB6C"},
			Yellow:    lipgloss.AdaptiveColor{Light: "#A68A64", Dark: "#FF9E3B"},
			Red:       lipgloss.AdaptiveColor{Light: "#C34043", Dark: "#FF5D62"},
			Orange:    lipgloss.AdaptiveColor{Light: "#CC6B4E", Dark: "#FFA066"},
			Cyan:      lipgloss.AdaptiveColor{Light: "#5B8BBE", Dark: "#7E9CD8"},
			Blue:      lipgloss.AdaptiveColor{Light: "#4F7CAC", Dark: "#7FB4CA"},
			Violet:    lipgloss.AdaptiveColor{Light: "#674D7A", Dark: "#957FB8"},
			MutedText: lipgloss.AdaptiveColor{Light: "#6C7086", Dark: "#727169"},
			Border:    lipgloss.AdaptiveColor{Light: "#B5BDC5", Dark: "#363646"},
		}
	},
	"terminal": func() Colors {
		return Colors{
			Green:     lipgloss.Color("2"),
			Yellow:    lipgloss.Color("3"),
			Red:       lipgloss.Color("1"),
			Orange:    lipgloss.Color("208"),
			Cyan:      lipgloss.Color("6"),
			Blue:      lipgloss.Color("4"),
			Violet:    lipgloss.Color("5"),
			MutedText: lipgloss.Color("8"),
			Border:    lipgloss.Color("8"),
		}
	},
}

// DefaultTheme is selected by HOOKCFG_THEME ("kanagawa" or "terminal").
var DefaultTheme = New(os.Getenv("HOOKCFG_THEME"))

// New builds the named theme, falling back to kanagawa.
func New(name string) *Theme {
	palette, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		palette = palettes["kanagawa"]
	}
	colors := palette()

	return &Theme{
		Colors:  colors,
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colors.Orange),
		Success: lipgloss.NewStyle().Foreground(colors.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(colors.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(colors.Cyan),
		Bold:    lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Muted:   lipgloss.NewStyle().Foreground(colors.MutedText),
		Accent:  lipgloss.NewStyle().Foreground(colors.Violet).Bold(true),
		Code:    lipgloss.NewStyle().Foreground(colors.Violet),
		Path:    lipgloss.NewStyle().Foreground(colors.Cyan).Italic(true),
	}
}

// DisableColor strips colors and text attributes from every lipgloss render.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorDisabled reports whether NO_COLOR is set.
func ColorDisabled() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}
