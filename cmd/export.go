package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/model"
)

var (
	exportOutput string

	exportCmd = &cobra.Command{
		Use:   "export <workflow.json>",
		Short: "Rewrite a workflow document in the export format",
		Long: `Parse a workflow document and write it back with its metadata
filled in (creation time and format version).

The result goes to stdout unless --output is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := model.LoadWorkflowFile(args[0])
			if err != nil {
				return err
			}

			out, err := wf.ToJSON()
			if err != nil {
				return err
			}

			if exportOutput == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			return os.WriteFile(exportOutput, append(out, '\n'), 0o644)
		},
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write the exported workflow to")
	rootCmd.AddCommand(exportCmd)
}
