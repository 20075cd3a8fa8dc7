package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/paddock/internal/config"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, remove and purge the sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := sessionBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		ids, err := b.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := sessionBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		sess, err := b.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := sessionBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		failed := 0
		for _, id := range args {
			if err := b.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sessions not removed", failed, len(args))
		}
		return nil
	},
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop expired sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := sessionBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		if b.Purger == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to purge: this store expires sessions on its own.")
			return nil
		}
		n, err := b.Purger.Purge(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired session(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd, sessionPurgeCmd)
}

// sessionBackend opens the configured store. The in-memory store holds
// nothing between processes, so it is read as the file store instead.
func sessionBackend(cmd *cobra.Command) (*backend, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.BackendMemory {
		cfg.Store.Backend = config.BackendFile
	}
	return openBackend(cmd.Context(), cfg.Store)
}
