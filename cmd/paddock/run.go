package main

import (
	"log/slog"

	"github.com/aretw0/paddock/internal/cli"
	"github.com/aretw0/paddock/internal/config"
	"github.com/aretw0/paddock/internal/logging"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wizard in the terminal",
	Long: `Runs the signup wizard in the terminal. Progress is saved after every action
in the configured session store, so "paddock run" resumes where it stopped.
Without a TTY (or with --headless) it reads line commands from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")

		// The terminal has no shared memory between runs.
		if cfg.Store.Backend == config.BackendMemory {
			cfg.Store.Backend = config.BackendFile
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		store, err := openBackend(sc, cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		logger := logging.NewNop()
		if debug {
			logger = logging.New(slog.LevelDebug)
		}

		return cli.Execute(sc, cli.RunOptions{
			SessionID: sessionID,
			Fresh:     fresh,
			Headless:  headless,
			Debug:     debug,
			Store:     store.Store,
			Source:    newSource(cfg.API, logger),
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
			Logger:    logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session to resume or start")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session and start over")
	runCmd.Flags().Bool("headless", false, "Read line commands from stdin instead of the interactive UI")
	runCmd.Flags().Bool("debug", false, "Log to stderr")
}
