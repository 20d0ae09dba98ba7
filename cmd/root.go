package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	config  = ""
	rootCmd = &cobra.Command{
		Use:   "avax-workflow",
		Short: "AVAX workflow engine CLI",
		Long: `Run, validate and serve AVAX workflows.

A workflow is the json document exported by the editor: a list of nodes
executed in order and a list of edges used for data lookup.

Such as "avax-workflow run workflow.json" or "avax-workflow serve"
`,
		SilenceUsage: true,
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config, "config", "c", "", "Path to config file, environment variables and defaults are used when empty")
}
