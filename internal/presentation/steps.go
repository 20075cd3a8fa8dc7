package presentation

import (
	"fmt"
	"strings"

	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/steps"
)

// StepIndicator renders the step labels with the current one marked,
// e.g. "**[1] Basic Info** › 2 Driver Selection › 3 Summary".
func StepIndicator(current int) string {
	parts := make([]string, len(navigator.Labels))
	for i, label := range navigator.Labels {
		if i+1 == current {
			parts[i] = fmt.Sprintf("**[%d] %s**", i+1, label)
			continue
		}
		parts[i] = fmt.Sprintf("%d %s", i+1, label)
	}
	return strings.Join(parts, " › ")
}

// BasicInfoMarkdown renders the first step as Markdown.
func BasicInfoMarkdown(m steps.BasicInfoModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", navigator.Labels[0])
	field(&b, TitleName, m.Name, m.NameError)
	field(&b, TitleEmail, m.Email, m.EmailError)
	return b.String()
}

func field(b *strings.Builder, label, value, errMsg string) {
	if value == "" {
		value = "_empty_"
	} else {
		value = escape(value)
	}
	fmt.Fprintf(b, "- **%s\\*:** %s\n", label, value)
	if errMsg != "" {
		fmt.Fprintf(b, "  - ⚠ %s\n", escape(errMsg))
	}
}

// DriverSelectionMarkdown renders the second step as a numbered list.
func DriverSelectionMarkdown(m steps.DriverSelectionModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", navigator.Labels[1])
	switch {
	case m.Loading:
		b.WriteString("_Loading drivers…_\n")
	case m.Error != "":
		fmt.Fprintf(&b, "> %s\n", escape(m.Error))
	case len(m.Options) == 0:
		fmt.Fprintf(&b, "_%s_\n", TitleSelectADriver)
	}
	for i, opt := range m.Options {
		marker := " "
		if opt.Selected {
			marker = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, marker, escape(opt.Label))
	}
	if m.FieldError != "" {
		fmt.Fprintf(&b, "\n⚠ %s\n", escape(m.FieldError))
	}
	return b.String()
}
