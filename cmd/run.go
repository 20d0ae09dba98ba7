package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/model"
)

var (
	dumpOutcome bool

	runCmd = &cobra.Command{
		Use:   "run <workflow.json>",
		Short: "Execute a workflow once",
		Long: `Load a workflow document and execute its nodes in list order.

The run outcome is printed as json and kept in the run history.
Use --dump to pretty print the outcome instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := model.LoadWorkflowFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			run := rt.engine.Execute(ctx, wf)

			if dumpOutcome {
				pp.Println(run)
			} else {
				out, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}

			if run.Status != model.RunStatusCompleted {
				return fmt.Errorf("run %s %s: %s", run.RunID, run.Status, run.Error)
			}
			return nil
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&dumpOutcome, "dump", false, "pretty print the run outcome")
	rootCmd.AddCommand(runCmd)
}
