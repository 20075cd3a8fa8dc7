package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/presentation"
	"github.com/aretw0/paddock/internal/presentation/tui"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/steps"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	currentStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
)

// enteredMsg reports that a step finished loading.
type enteredMsg struct{}

// wizardModel is the bubbletea front-end of the wizard.
type wizardModel struct {
	ctx  context.Context
	w    *paddock.Wizard
	save func(context.Context) error

	inputs  []textinput.Model
	fields  []string
	focus   int
	cursor  int
	spinner spinner.Model
	busy    bool

	render tui.Renderer
	width  int
	err    error
}

func newWizardModel(ctx context.Context, w *paddock.Wizard, save func(context.Context) error) wizardModel {
	m := wizardModel{
		ctx:     ctx,
		w:       w,
		save:    save,
		fields:  []string{domain.FieldName, domain.FieldEmail},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		busy:    true,
	}
	bi := w.BasicInfo.Model()
	for i, label := range []string{presentation.TitleName, presentation.TitleEmail} {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-6s ", label+":")
		in.CharLimit = 120
		in.Width = 40
		if i == 0 {
			in.SetValue(bi.Name)
			in.Focus()
		} else {
			in.SetValue(bi.Email)
		}
		m.inputs = append(m.inputs, in)
	}
	return m
}

// enter runs the arrival at path off the update loop, since it may fetch.
func (m wizardModel) enter(path string, nav *domain.NavState) tea.Cmd {
	return func() tea.Msg {
		m.w.Enter(m.ctx, path, nav)
		return enteredMsg{}
	}
}

func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.enter(navigator.PathForStep(m.w.State().Step), nil))
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.render = nil
		return m, nil

	case enteredMsg:
		m.busy = false
		m.cursor = m.selectedIndex()
		bi := m.w.BasicInfo.Model()
		m.inputs[0].SetValue(bi.Name)
		m.inputs[1].SetValue(bi.Email)
		m.persist()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.persist()
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m wizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	step := m.w.State().Step
	buttons := m.w.Buttons()

	switch key := msg.String(); key {
	case "enter":
		if step == steps.DriverSelectionStep {
			m.choose()
		}
		if !buttons.Next || buttons.NextDisabled {
			return m, nil
		}
		nav, ok := m.w.Nav.Next()
		return m.navigate(nav, ok)

	case "ctrl+b":
		nav, ok := m.w.Nav.Back()
		return m.navigate(nav, ok)

	case "ctrl+r":
		if !buttons.Clear {
			return m, nil
		}
		nav := m.w.Nav.Clear()
		m.inputs[0].SetValue("")
		m.inputs[1].SetValue("")
		return m.navigate(nav, true)

	case "alt+1", "alt+2", "alt+3":
		label, _ := resolveStep(key[len(key)-1:])
		nav, ok := m.w.Nav.JumpTo(label)
		return m.navigate(nav, ok)
	}

	switch step {
	case steps.BasicInfoStep:
		return m.updateInputs(msg)
	case steps.DriverSelectionStep:
		return m.updateList(msg)
	}
	return m, nil
}

func (m wizardModel) navigate(nav *navigator.Navigation, ok bool) (tea.Model, tea.Cmd) {
	m.persist()
	if !ok {
		return m, nil
	}
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.enter(nav.Path, &nav.State))
}

func (m wizardModel) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.inputs[m.focus].Focus()
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		if err := m.w.BasicInfo.UpdateField(m.fields[m.focus], after); err != nil {
			m.err = err
		}
		m.persist()
	}
	return m, cmd
}

func (m wizardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.w.DriverSelection.Model().Options)
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case " ":
		m.choose()
	}
	return m, nil
}

func (m *wizardModel) choose() {
	opts := m.w.DriverSelection.Model().Options
	if m.cursor >= 0 && m.cursor < len(opts) {
		m.w.DriverSelection.Choose(opts[m.cursor].ID)
		m.persist()
	}
}

func (m wizardModel) selectedIndex() int {
	for i, opt := range m.w.DriverSelection.Model().Options {
		if opt.Selected {
			return i
		}
	}
	return 0
}

func (m *wizardModel) persist() {
	if err := m.save(m.ctx); err != nil {
		m.err = err
	}
}

func (m wizardModel) View() string {
	st := m.w.State()
	var b strings.Builder

	b.WriteString(m.indicator(st.Step))
	b.WriteString("\n\n")

	switch st.Step {
	case steps.BasicInfoStep:
		bi := m.w.BasicInfo.Model()
		errs := []string{bi.NameError, bi.EmailError}
		for i, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("\n")
			if errs[i] != "" {
				b.WriteString(errorStyle.Render("  "+errs[i]) + "\n")
			}
		}
	case steps.DriverSelectionStep:
		b.WriteString(m.driverList())
	case steps.SummaryStep:
		b.WriteString(m.summary())
	}

	if m.busy || st.Loading {
		b.WriteString("\n" + m.spinner.View() + " Loading…\n")
	}
	if msg := st.ErrorMessage(); msg != "" {
		b.WriteString("\n" + errorStyle.Render(msg) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render(keyHint(m.w.Buttons())) + "\n")
	return b.String()
}

func (m wizardModel) indicator(current int) string {
	parts := make([]string, len(navigator.Labels))
	for i, label := range navigator.Labels {
		text := fmt.Sprintf("%d %s", i+1, label)
		if i+1 == current {
			text = currentStyle.Render(text)
		} else {
			text = mutedStyle.Render(text)
		}
		parts[i] = text
	}
	return titleStyle.Render("paddock") + "  " + strings.Join(parts, mutedStyle.Render(" › "))
}

func (m wizardModel) driverList() string {
	dm := m.w.DriverSelection.Model()
	var b strings.Builder
	b.WriteString(titleStyle.Render(presentation.TitleSelectDriver) + "\n")
	for i, opt := range dm.Options {
		cursor := "  "
		if i == m.cursor {
			cursor = "› "
		}
		line := cursor + opt.Label
		if opt.Selected {
			line = selectedStyle.Render(line + " ✓")
		}
		b.WriteString(line + "\n")
	}
	if dm.FieldError != "" {
		b.WriteString(errorStyle.Render(dm.FieldError) + "\n")
	}
	return b.String()
}

func (m *wizardModel) summary() string {
	md := presentation.SummaryMarkdown(m.w.Summary.Model())
	if m.render == nil {
		r, err := tui.NewRenderer(m.width)
		if err != nil {
			return md
		}
		m.render = r
	}
	out, err := m.render(md)
	if err != nil {
		return md
	}
	return out
}

func keyHint(b navigator.Buttons) string {
	hints := []string{}
	if b.Back {
		hints = append(hints, "ctrl+b "+presentation.ButtonBack)
	}
	if b.Next && !b.NextDisabled {
		hints = append(hints, "enter "+presentation.ButtonNext)
	}
	if b.Clear {
		hints = append(hints, "ctrl+r "+presentation.ButtonClear)
	}
	hints = append(hints, "alt+1..3 jump", "esc quit")
	return strings.Join(hints, " · ")
}

func runInteractive(ctx context.Context, w *paddock.Wizard, save func(context.Context) error, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newWizardModel(ctx, w, save),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return context.Canceled
	}
	return err
}
