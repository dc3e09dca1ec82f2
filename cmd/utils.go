package cmd

import (
	"errors"
	"fmt"

	"github.com/kvshift/kvshift/internal/config"
	"github.com/kvshift/kvshift/internal/message"
	"github.com/kvshift/kvshift/internal/migrate"
)

func loadEnvironments(path string) (*config.File, error) {
	if path == "" {
		var err error
		path, err = message.Prompt("Enter the path to the environments file", "environments.json")
		if err != nil {
			return nil, err
		}
	}

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	message.Debug("Loaded %d environment(s) from %s", len(file.Environments), path)
	return file, nil
}

// ensurePrincipalSecret prompts for the client secret when an environment
// declares a service principal without one. The secret never appears in the
// environments file on disk.
func ensurePrincipalSecret(env *migrate.EnvironmentSpec) error {
	if env.Principal == nil || env.Principal.Secret != "" {
		return nil
	}

	secret, err := message.Password(fmt.Sprintf("Enter the client secret for service principal '%s' (environment '%s')", env.Principal.AppID, env.Name))
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}
	if secret == "" {
		return errors.New("client secret must not be empty")
	}
	env.Principal.Secret = secret
	return nil
}

func ensurePrincipalSecrets(file *config.File) error {
	for i := range file.Environments {
		if err := ensurePrincipalSecret(&file.Environments[i]); err != nil {
			return err
		}
	}
	return nil
}
