package tui

import (
	"io"

	"github.com/muesli/termenv"
)

// Palette colors short status lines for one output.
type Palette struct {
	out *termenv.Output
}

// NewPalette detects the color profile of w.
func NewPalette(w io.Writer) Palette {
	return Palette{out: termenv.NewOutput(w)}
}

// Error renders s in red.
func (p Palette) Error(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#ef4444")).String()
}

// Hint renders s faint.
func (p Palette) Hint(s string) string {
	return p.out.String(s).Faint().String()
}

// Success renders s in green.
func (p Palette) Success(s string) string {
	return p.out.String(s).Foreground(p.out.Color("#22c55e")).String()
}
