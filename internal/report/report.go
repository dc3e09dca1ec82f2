package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kvshift/kvshift/internal/migrate"
)

// Log is the persisted record of one migration run.
type Log struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Results     []migrate.MigrationResult `json:"results"`
}

func Write(path string, results []migrate.MigrationResult) error {
	log := Log{
		GeneratedAt: time.Now().UTC(),
		Results:     results,
	}
	raw, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal migration log: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create migration log directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write migration log: %w", err)
	}
	return nil
}

func Read(path string) (*Log, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration log: %w", err)
	}
	var log Log
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal migration log: %w", err)
	}
	return &log, nil
}

// Summary counts environments per terminal status.
type Summary struct {
	Completed    int
	WithWarnings int
	Aborted      int
}

func Summarize(results []migrate.MigrationResult) Summary {
	var summary Summary
	for _, result := range results {
		switch result.Status {
		case migrate.EnvCompleted:
			summary.Completed++
		case migrate.EnvCompletedWithWarnings:
			summary.WithWarnings++
		case migrate.EnvAborted:
			summary.Aborted++
		}
	}
	return summary
}
