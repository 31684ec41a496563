package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Report struct {
	RunID       string         `yaml:"run_id"`
	GeneratedAt string         `yaml:"generated_at"`
	Output      string         `yaml:"output"`
	Dialect     string         `yaml:"dialect"`
	Seed        uint64         `yaml:"seed"`
	Statements  int            `yaml:"statements"`
	Tables      map[string]int `yaml:"tables"`
	Sessions    SessionReport  `yaml:"sessions"`
}

type SessionReport struct {
	Requested int            `yaml:"requested"`
	Accepted  int            `yaml:"accepted"`
	Rejected  map[string]int `yaml:"rejected,omitempty"`
}

func NewReport(output, dialect string, seed uint64) Report {
	return Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Output:      output,
		Dialect:     dialect,
		Seed:        seed,
		Tables:      make(map[string]int),
	}
}

func WriteReport(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func ReadReport(path string) (Report, error) {
	var report Report
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("failed to read report: %w", err)
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("failed to parse report: %w", err)
	}
	return report, nil
}
