package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	rightAlignedTemplateConstant = "%*s"
	ownedStatusColorConstant     = "2"
	partialStatusColorConstant   = "3"
	unownedStatusColorConstant   = "1"
)

// Ownership status labels rendered by StatusPalette.
const (
	StatusOwned   = "owned"
	StatusPartial = "partial"
	StatusUnowned = "unowned"
)

// StatusPalette renders ownership status labels, coloring them when enabled.
type StatusPalette struct {
	colorEnabled bool
	styles       map[string]lipgloss.Style
}

// NewStatusPalette constructs a palette. Labels stay plain when colorEnabled is false.
func NewStatusPalette(colorEnabled bool) StatusPalette {
	return StatusPalette{
		colorEnabled: colorEnabled,
		styles: map[string]lipgloss.Style{
			StatusOwned:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ownedStatusColorConstant)),
			StatusPartial: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(partialStatusColorConstant)),
			StatusUnowned: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(unownedStatusColorConstant)),
		},
	}
}

// Render returns status right-aligned to width, colored when the palette is enabled.
func (palette StatusPalette) Render(status string, width int) string {
	padded := fmt.Sprintf(rightAlignedTemplateConstant, width, status)
	if !palette.colorEnabled {
		return padded
	}
	style, exists := palette.styles[status]
	if !exists {
		return padded
	}
	return style.Render(padded)
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fileDescriptor := file.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}
