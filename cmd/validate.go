package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.json>",
	Short: "Check every node of a workflow without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := model.LoadWorkflowFile(args[0])
		if err != nil {
			return err
		}

		invalid := 0
		for _, v := range taskengine.ValidateWorkflow(wf) {
			if v.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "ok      %s (%s)\n", v.NodeID, v.NodeType)
				continue
			}
			invalid++
			fmt.Fprintf(cmd.OutOrStdout(), "invalid %s (%s): %s\n", v.NodeID, v.NodeType, v.Message)
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d nodes are invalid", invalid, len(wf.Nodes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
