package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/giantswarm/applaunch"
)

func newWaitPortCmd() *cobra.Command {
	var f waitFlags

	cmd := &cobra.Command{
		Use:   "wait-port <port>",
		Short: "Wait until a local TCP port accepts connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[0], err)
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			return applaunch.WaitForPort(cmd.Context(), port, opts...)
		},
	}
	f.register(cmd.Flags())

	return cmd
}
