package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/kvshift/kvshift/internal/migrate"
)

// File is the declarative environment list driving a migration run. JSON is
// the native format; files ending in .yaml or .yml are parsed as YAML.
type File struct {
	Environments []migrate.EnvironmentSpec `json:"environments" yaml:"environments"`
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environments file: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal environments file: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal environments file: %w", err)
		}
	}

	if len(file.Environments) == 0 {
		return nil, fmt.Errorf("environments file '%s' declares no environments", path)
	}
	seen := make(map[string]bool, len(file.Environments))
	for i, env := range file.Environments {
		if err := env.Validate(); err != nil {
			return nil, fmt.Errorf("environment %d ('%s') is invalid: %w", i, env.Name, err)
		}
		if seen[env.Name] {
			return nil, fmt.Errorf("environment name '%s' is declared twice", env.Name)
		}
		seen[env.Name] = true
	}
	return &file, nil
}

// Names lists the declared environment names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Environments))
	for i, env := range f.Environments {
		names[i] = env.Name
	}
	return names
}

// Environment returns the named environment spec.
func (f *File) Environment(name string) (migrate.EnvironmentSpec, error) {
	for _, env := range f.Environments {
		if env.Name == name {
			return env, nil
		}
	}
	return migrate.EnvironmentSpec{}, fmt.Errorf("environment '%s' is not declared", name)
}
