package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/presentation/tui"
	"github.com/aretw0/paddock/pkg/adapters/file"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/observability"
	"github.com/aretw0/paddock/pkg/ports"
	"github.com/aretw0/paddock/pkg/session"
)

// DefaultSessionID names the session resumed when none is given.
const DefaultSessionID = "default"

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	SessionID string
	Fresh     bool
	Headless  bool
	Debug     bool
	StorePath string

	// Store overrides the file store rooted at StorePath.
	Store  ports.StateStore
	Source ports.DriverSource

	In  io.Reader
	Out io.Writer

	Logger *slog.Logger
}

// Execute runs the wizard in the terminal until the user quits or input ends.
// Progress is saved after every action, so the same session can be resumed.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(opts.Debug)
	}
	store := opts.Store
	if store == nil {
		store = file.New(opts.StorePath)
	}
	mgr := session.NewManager(store, session.WithLogger(logger))

	if opts.Fresh {
		if err := mgr.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}
	sess, err := mgr.LoadOrStart(ctx, opts.SessionID)
	if err != nil {
		return err
	}
	logger.Info("session ready", "session_id", opts.SessionID, "step", sess.Form.Step)

	w := paddock.New(opts.Source,
		paddock.WithState(sess.Form),
		paddock.WithLogger(logger),
		paddock.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	save := func(ctx context.Context) error {
		return mgr.Save(ctx, opts.SessionID, &domain.Session{ID: opts.SessionID, Form: w.State()})
	}

	interactive := !opts.Headless && isTerminal(opts.In) && isTerminal(opts.Out)
	if !interactive {
		render, err := tui.NewPlainRenderer()
		if err != nil {
			return fmt.Errorf("failed to build renderer: %w", err)
		}
		printSystemMessage(opts.Out, "Session '%s' at %s.", opts.SessionID, navigator.LabelForStep(sess.Form.Step))
		w.Enter(ctx, navigator.PathForStep(sess.Form.Step), nil)
		r := &lineRunner{
			w:       w,
			in:      opts.In,
			out:     opts.Out,
			render:  render,
			palette: tui.NewPalette(opts.Out),
			save:    save,
		}
		return handleExecutionError(r.run(ctx))
	}

	tui.PrintBanner(opts.Out, paddock.Version)
	return handleExecutionError(runInteractive(ctx, w, save, opts.In, opts.Out))
}
