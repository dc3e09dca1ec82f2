package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvshift/kvshift/internal/azure"
	"github.com/kvshift/kvshift/internal/message"
	"github.com/kvshift/kvshift/internal/migrate"
)

var inventoryConfigPath string
var inventoryEnvName string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "List the contents of a source Key Vault",
	Long:  `It lists the secrets, keys and certificates held by the source Key Vault of one environment without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, err := loadEnvironments(inventoryConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load environments: %w", err)
		}

		envName := inventoryEnvName
		if envName == "" {
			names := file.Names()
			if len(names) == 1 {
				envName = names[0]
			} else {
				envName, err = message.Select("Select environment", names)
				if err != nil {
					return fmt.Errorf("failed to select environment: %w", err)
				}
			}
		}
		env, err := file.Environment(envName)
		if err != nil {
			return err
		}
		if err := ensurePrincipalSecret(&env); err != nil {
			return err
		}

		provider, err := azure.NewProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize azure provider: %w", err)
		}
		services := provider.Services()

		if env.Principal != nil {
			if _, err := services.Auth.Login(ctx, *env.Principal); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
		} else {
			session, err := services.Auth.CurrentSession(ctx)
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
			message.Debug("Authenticated as '%s' on tenant '%s'", session.Principal, session.TenantID)
		}

		sw := migrate.NewSubscriptionContext(services.Verifier)
		source := migrate.VaultEndpoint{
			SubscriptionID: env.Source.SubscriptionID,
			ResourceGroup:  env.Source.ResourceGroup,
			Name:           env.Source.KeyVaultName,
		}

		secretNames, err := migrate.NewSecretReplicator(services.Secrets).ListNames(ctx, sw, source)
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		inv, err := migrate.NewKeyCertInventory(services.Keys, services.Certificates).Inventory(ctx, sw, source)
		if err != nil {
			return fmt.Errorf("failed to list keys and certificates: %w", err)
		}

		message.Info("Key Vault '%s' holds %d secret(s), %d key(s), %d certificate(s)", env.Source.KeyVaultName, len(secretNames), len(inv.Keys), len(inv.Certificates))
		for _, name := range secretNames {
			message.Info("  secret       %s", name)
		}
		for _, name := range inv.Keys {
			message.Info("  key          %s", name)
		}
		for _, name := range inv.Certificates {
			message.Info("  certificate  %s", name)
		}
		return nil
	},
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryConfigPath, "config", "", "path to the environments file (json or yaml)")
	inventoryCmd.Flags().StringVar(&inventoryEnvName, "env", "", "name of the environment to inspect (prompts when omitted)")
	rootCmd.AddCommand(inventoryCmd)
}
