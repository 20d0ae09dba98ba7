package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/api"
	"github.com/AvaProtocol/avax-workflow/core/backup"
)

var (
	serveBackupDir      string
	serveBackupInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow api over http",
	Long: `Start the http api: POST /api/execute, POST /api/validate,
GET /api/runs, GET /api/runs/:id, /metrics and /up.

Requests are authenticated with api keys from create-api-key when
jwt_secret is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if cfg.JWTSecret == "" {
			rt.logger.Warn("jwt_secret is not set, the api accepts unauthenticated requests")
		}

		if serveBackupInterval > 0 {
			service := backup.NewService(rt.logger, rt.db, serveBackupDir)
			if err := service.StartPeriodicBackup(serveBackupInterval); err != nil {
				return err
			}
			defer service.StopPeriodicBackup()
		}

		server := api.NewServer(rt.engine, api.Config{
			BindAddress: cfg.HTTPBindAddress,
			JWTSecret:   []byte(cfg.JWTSecret),
			Gatherer:    rt.registry,
		}, rt.logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		rt.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveBackupDir, "backup-dir", "./backup", "directory for periodic run history backups")
	serveCmd.Flags().DurationVar(&serveBackupInterval, "backup-interval", 0, "interval between run history backups, disabled when 0")
	rootCmd.AddCommand(serveCmd)
}
