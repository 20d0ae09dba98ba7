package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/avax-workflow/core/auth"
)

var (
	apiKeyRoles []string
	apiKeyTTL   time.Duration

	createApiKey = &cobra.Command{
		Use:   "create-api-key",
		Short: "Create a JWT api key for the http api",
		Long: `Create a JWT key signed with the configured jwt_secret.
A readonly key can validate workflows and read the run history, an admin key can also execute workflows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("jwt_secret is not configured")
			}

			roles := make([]auth.ApiRole, 0, len(apiKeyRoles))
			for _, r := range apiKeyRoles {
				role := auth.ApiRole(r)
				if role != auth.AdminRole && role != auth.ReadonlyRole {
					return fmt.Errorf("unknown role %q, expected %s or %s", r, auth.AdminRole, auth.ReadonlyRole)
				}
				roles = append(roles, role)
			}

			key, err := auth.CreateAPIKey([]byte(cfg.JWTSecret), roles, apiKeyTTL)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
)

func init() {
	createApiKey.Flags().StringArrayVar(&apiKeyRoles, "role", []string{string(auth.ReadonlyRole)}, "Role for API Key")
	createApiKey.Flags().DurationVar(&apiKeyTTL, "ttl", 24*time.Hour*365, "validity of the key")
	rootCmd.AddCommand(createApiKey)
}
