package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/core/backup"
)

var (
	backupDir     string
	restoreFrom   string
	backupCommand = &cobra.Command{
		Use:   "backup",
		Short: "Back up or restore the run history",
		Long: `Write a full backup of the run history database into a timestamped
directory under --dir, or load one back with --restore.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, _, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			service := backup.NewService(cfg.Logger, db, backupDir)
			if restoreFrom != "" {
				return service.Restore(restoreFrom)
			}

			file, err := service.PerformBackup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}
)

func init() {
	backupCommand.Flags().StringVar(&backupDir, "dir", "./backup", "directory to write backups into")
	backupCommand.Flags().StringVar(&restoreFrom, "restore", "", "backup file to load into the run history")
	rootCmd.AddCommand(backupCommand)
}
