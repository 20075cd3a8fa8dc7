package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/presentation"
	"github.com/aretw0/paddock/internal/presentation/tui"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/steps"
	"github.com/aretw0/paddock/pkg/validator"
)

const lineHelp = `Commands:
  name <text>      set the name (Basic Info)
  email <text>     set the email (Basic Info)
  driver <n|id>    pick a driver by list number or id (Driver Selection)
  next | back      move between steps
  goto <step>      jump to a step by number, route or label
  clear            start over (Summary)
  help | quit`

var errWrongStep = errors.New("not available on this step")

// lineRunner drives the wizard from line-oriented input, for pipes and scripts.
type lineRunner struct {
	w       *paddock.Wizard
	in      io.Reader
	out     io.Writer
	render  tui.Renderer
	palette tui.Palette
	save    func(context.Context) error
}

func (r *lineRunner) run(ctx context.Context) error {
	if err := r.save(ctx); err != nil {
		return err
	}
	r.show()

	reader := bufio.NewReader(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, "> ")
		line, readErr := reader.ReadString('\n')
		if line == "" && readErr != nil {
			fmt.Fprintln(r.out)
			return readErr
		}

		quit, err := r.exec(ctx, strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(r.out, r.palette.Error(err.Error()))
		}
		if err := r.save(ctx); err != nil {
			return err
		}
		if quit {
			printSystemMessage(r.out, "Saved at %s.", navigator.LabelForStep(r.w.State().Step))
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// exec applies one command. It reports whether the user asked to quit.
func (r *lineRunner) exec(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	step := r.w.State().Step
	buttons := r.w.Buttons()

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "help", "?":
		fmt.Fprintln(r.out, lineHelp)
		return false, nil
	case "quit", "q", "exit":
		return true, nil

	case domain.FieldName, domain.FieldEmail:
		if step != steps.BasicInfoStep {
			return false, errWrongStep
		}
		value, err := validator.SanitizeField(arg)
		if err != nil {
			return false, err
		}
		if err := r.w.BasicInfo.UpdateField(strings.ToLower(cmd), value); err != nil {
			return false, err
		}

	case "driver", "pick":
		if step != steps.DriverSelectionStep {
			return false, errWrongStep
		}
		id := arg
		opts := r.w.DriverSelection.Model().Options
		if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(opts) {
			id = opts[n-1].ID
		}
		r.w.DriverSelection.Choose(id)

	case "next", "n":
		if !buttons.Next || buttons.NextDisabled {
			return false, errWrongStep
		}
		if nav, ok := r.w.Nav.Next(); ok {
			r.w.Enter(ctx, nav.Path, &nav.State)
		}

	case "back", "b":
		if !buttons.Back {
			return false, errWrongStep
		}
		if nav, ok := r.w.Nav.Back(); ok {
			r.w.Enter(ctx, nav.Path, &nav.State)
		}

	case "clear":
		if !buttons.Clear {
			return false, errWrongStep
		}
		nav := r.w.Nav.Clear()
		r.w.Enter(ctx, nav.Path, &nav.State)

	case "goto":
		label, ok := resolveStep(arg)
		if !ok {
			return false, fmt.Errorf("unknown step %q", arg)
		}
		if nav, ok := r.w.Nav.JumpTo(label); ok {
			r.w.Enter(ctx, nav.Path, &nav.State)
		}

	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}

	r.show()
	return false, nil
}

func (r *lineRunner) show() {
	out, err := r.render(stepMarkdown(r.w))
	if err != nil {
		fmt.Fprintln(r.out, r.palette.Error(err.Error()))
		return
	}
	fmt.Fprint(r.out, out)
	fmt.Fprintln(r.out, r.palette.Hint(buttonHint(r.w.Buttons())))
}

// stepMarkdown renders the indicator and the current step.
func stepMarkdown(w *paddock.Wizard) string {
	st := w.State()
	var body string
	switch st.Step {
	case steps.BasicInfoStep:
		body = presentation.BasicInfoMarkdown(w.BasicInfo.Model())
	case steps.DriverSelectionStep:
		body = presentation.DriverSelectionMarkdown(w.DriverSelection.Model())
	case steps.SummaryStep:
		body = presentation.SummaryMarkdown(w.Summary.Model())
	}
	return presentation.StepIndicator(st.Step) + "\n\n" + body
}

func buttonHint(b navigator.Buttons) string {
	var hints []string
	if b.Back {
		hints = append(hints, "["+presentation.ButtonBack+"]")
	}
	if b.Next {
		next := "[" + presentation.ButtonNext + "]"
		if b.NextDisabled {
			next += " (loading)"
		}
		hints = append(hints, next)
	}
	if b.Clear {
		hints = append(hints, "["+presentation.ButtonClear+"]")
	}
	return strings.Join(hints, " ")
}
