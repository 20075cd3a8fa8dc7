package presentation

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/aretw0/paddock/pkg/steps"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryMarkdown renders the summary step as Markdown.
func SummaryMarkdown(m steps.SummaryModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", TitleSummary)
	fmt.Fprintf(&b, "## %s\n\n", TitleBasicInformation)
	fmt.Fprintf(&b, "- **%s:** %s\n", TitleName, escape(m.Name))
	fmt.Fprintf(&b, "- **%s:** %s\n", TitleEmail, escape(m.Email))

	if m.Error != "" {
		fmt.Fprintf(&b, "\n> %s\n", escape(m.Error))
	}
	if m.Driver == nil {
		return b.String()
	}

	d := m.Driver
	fmt.Fprintf(&b, "\n## %s\n\n", TitleDriverDetails)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", TitleName, escape(d.Name))
	fmt.Fprintf(&b, "| %s | %s |\n", TitleNumber, escape(d.Number))
	fmt.Fprintf(&b, "| %s | %s |\n", TitleCode, escape(d.Code))
	if d.HasStanding {
		fmt.Fprintf(&b, "| %s | %s |\n", TitleCurrentStanding, escape(d.Position))
		fmt.Fprintf(&b, "| %s | %s |\n", TitlePoints, escape(d.Points))
		fmt.Fprintf(&b, "| %s | %s |\n", TitleWins, escape(d.Wins))
		if d.Team != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", TitleTeam, escape(d.Team))
		}
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// SummaryHTML renders the summary step as an HTML fragment.
// User input is escaped before conversion and raw HTML is not passed through.
func SummaryHTML(m steps.SummaryModel) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(SummaryMarkdown(m)), &buf); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// mdEscaper backslash-escapes Markdown punctuation. Both goldmark and the
// terminal renderer read the result, so no HTML entities are produced.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "&", `\&`, "#", `\#`,
	"\n", " ", "\r", " ",
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
