package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mad-rewrite/internal/lsys"
)

func newLsysCmd() *cobra.Command {
	var (
		axiom string
		gens  int
	)
	cmd := &cobra.Command{
		Use:   "lsys <production>...",
		Short: "Expand a parallel string grammar, e.g. lsys --axiom a a=[*Ccrb] b=aYaYa",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := lsys.Parse(args...)
			if err != nil {
				return err
			}
			for i, s := range g.Generations(axiom, gens) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&axiom, "axiom", "a", "starting string")
	cmd.Flags().IntVar(&gens, "gens", 3, "generations to expand")
	return cmd
}
