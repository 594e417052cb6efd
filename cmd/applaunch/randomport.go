package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/applaunch"
)

func newRandomPortCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "random-port",
		Short: "Print vacant TCP ports, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			registry, err := applaunch.NewPortRegistry("")
			if err != nil {
				return err
			}
			ports, err := registry.AllocateN(count)
			if err != nil {
				return err
			}
			for _, port := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), port)
				registry.Release(port)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of distinct ports")

	return cmd
}
