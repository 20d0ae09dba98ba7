package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPrune int

	historyCmd = &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past workflow runs",
		Long: `Without argument, list the most recent runs, newest first.
With a run id, print that run's full outcome.
--prune N deletes everything but the N most recent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, history, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if cmd.Flags().Changed("prune") {
				removed, err := history.Prune(historyPrune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d runs\n", removed)
				return nil
			}

			if len(args) == 1 {
				run, err := history.Get(args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			runs, err := history.List(historyLimit)
			if err != nil {
				return err
			}
			total, err := history.Count()
			if err != nil {
				return err
			}

			for _, run := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  %d steps  %s\n", run.RunID, run.Status, len(run.Steps), run.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d runs\n", len(runs), total)
			return nil
		},
	}
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list, 0 lists all")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "keep only this many recent runs")
	rootCmd.AddCommand(historyCmd)
}
