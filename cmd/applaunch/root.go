package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/giantswarm/applaunch"
)

// NewRootCmd returns the applaunch command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "applaunch",
		Short:         "Launch applications and wait until they accept connections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			applaunch.SetLogger(slog.New(handler).With("component", "applaunch"))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newWaitPortCmd())
	root.AddCommand(newRandomPortCmd())

	return root
}
