package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvshift/kvshift/internal/azure"
	"github.com/kvshift/kvshift/internal/message"
	"github.com/kvshift/kvshift/internal/migrate"
	"github.com/kvshift/kvshift/internal/report"
)

var migrateConfigPath string
var migrateOutputPath string
var migrateAssumeYes bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate Key Vault contents between Azure subscriptions",
	Long:  `It replicates resource groups, Key Vaults, access policies, tags, secrets and virtual networks from a source subscription into a target subscription, one environment at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, err := loadEnvironments(migrateConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load environments: %w", err)
		}
		if err := ensurePrincipalSecrets(file); err != nil {
			return err
		}

		message.Info("Planned migrations:")
		for _, env := range file.Environments {
			message.Info("  %s: %s/%s -> %s/%s", env.Name, env.Source.SubscriptionID, env.Source.KeyVaultName, env.Target.SubscriptionID, env.Target.KeyVaultName)
		}

		if !migrateAssumeYes {
			proceed, err := message.BoolSelect(fmt.Sprintf("Migrate %d environment(s)?", len(file.Environments)))
			if err != nil {
				return fmt.Errorf("failed to confirm migration: %w", err)
			}
			if !proceed {
				return errors.New("migration aborted, no changes made")
			}
		}

		provider, err := azure.NewProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize azure provider: %w", err)
		}
		orchestrator, err := migrate.NewOrchestrator(provider.Services())
		if err != nil {
			return fmt.Errorf("failed to initialize orchestrator: %w", err)
		}

		results := orchestrator.RunAll(ctx, file.Environments)

		for _, result := range results {
			renderResult(result)
		}

		summary := report.Summarize(results)
		message.Info("Migration finished: %d completed, %d with warnings, %d aborted", summary.Completed, summary.WithWarnings, summary.Aborted)

		if migrateOutputPath != "" {
			if err := report.Write(migrateOutputPath, results); err != nil {
				return fmt.Errorf("failed to write migration log: %w", err)
			}
			message.Info("Migration log written to: %s", migrateOutputPath)
		}

		if summary.Aborted > 0 {
			return fmt.Errorf("%d environment(s) aborted", summary.Aborted)
		}
		message.Success("All environments migrated")
		return nil
	},
}

func renderResult(result migrate.MigrationResult) {
	switch result.Status {
	case migrate.EnvCompleted:
		message.Success("Environment '%s' migrated", result.Environment)
	case migrate.EnvCompletedWithWarnings:
		message.Warning("Environment '%s' migrated with warnings", result.Environment)
	case migrate.EnvAborted:
		message.Error("Environment '%s' aborted in phase '%s'", result.Environment, result.Phase)
	}
	for _, step := range result.Steps {
		switch step.Status {
		case migrate.StepFailed, migrate.StepWarned:
			message.Warning("  %s: %s", step.Step, step.Detail)
		case migrate.StepSkipped:
			message.Debug("  %s: skipped, %s", step.Step, step.Detail)
		default:
			message.Debug("  %s: %s", step.Step, step.Detail)
		}
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateConfigPath, "config", "", "path to the environments file (json or yaml)")
	migrateCmd.Flags().StringVar(&migrateOutputPath, "output", "", "write the migration log to this file")
	migrateCmd.Flags().BoolVar(&migrateAssumeYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(migrateCmd)
}
