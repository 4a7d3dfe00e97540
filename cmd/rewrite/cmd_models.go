package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mad-rewrite/internal/model"
	"mad-rewrite/internal/seq"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "name\tdims\tsymbols\tsequence\tdescription")
			for _, name := range model.Presets() {
				m, err := model.Preset(name)
				if err != nil {
					return err
				}
				p, err := m.Build()
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\n", m.Name, m.Dims, m.Symbols, seq.Describe(p.Sequence), m.Description)
			}
			return tw.Flush()
		},
	}
}
