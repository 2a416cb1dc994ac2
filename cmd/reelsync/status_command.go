package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show persisted pipeline state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			stats, err := st.Stats(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", st.Path())
			fmt.Fprintln(out, renderPairs("Metric", "Count", true, [][2]string{
				{"Titles", formatCount(int(stats.Titles))},
				{"Flagged for review sync", formatCount(int(stats.Flagged))},
				{"Awaiting classification", formatCount(int(stats.Unclassified))},
				{"Reviews", formatCount(int(stats.Reviews))},
				{"Titles with weighted rating", formatCount(int(stats.Rated))},
			}))
			fmt.Fprintf(out, "Export target: %s\n", cfg.Export.Path)
			return nil
		},
	}
}
