package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`                  _     _            _    `,
	` _ __   __ _  __| | __| | ___   ___| | __`,
	`| '_ \ / _' |/ _' |/ _' |/ _ \ / __| |/ /`,
	`| |_) | (_| | (_| | (_| | (_) | (__|   < `,
	`| .__/ \__,_|\__,_|\__,_|\___/ \___|_|\_\`,
	`|_|                                      `,
}

// Gradient from amber to red.
var bannerColors = []string{"#fbbf24", "#f59e0b", "#f97316", "#ef4444", "#dc2626", "#b91c1c"}

// PrintBanner writes the paddock banner and version to w.
// Colors are dropped when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String("  version "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
