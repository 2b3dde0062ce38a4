// Package config provides configuration loading and structs for the Karte server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	Intake  IntakeConfig  `yaml:"intake"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document database and keyword index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// EngineConfig holds analysis thresholds and bounds.
type EngineConfig struct {
	// DuplicateThreshold is the minimum cosine similarity at which a new
	// document is flagged as a duplicate of an indexed one.
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
	// SummaryRatio is the target summary length as a fraction of the
	// sentence count.
	SummaryRatio float64 `yaml:"summary_ratio"`
	// MaxSummarySentences bounds the summarizer's sentence graph; longer
	// inputs are summarized over their first MaxSummarySentences sentences.
	MaxSummarySentences int `yaml:"max_summary_sentences"`
	// MaxDocumentBytes bounds extraction input; longer documents are rejected.
	MaxDocumentBytes int `yaml:"max_document_bytes"`
	// ChangePercentThreshold is the absolute percent change between
	// consecutive readings above which a change event is emitted.
	ChangePercentThreshold float64 `yaml:"change_percent_threshold"`
	// AdherenceGapDays is the average day gap between medication mentions
	// above which a potential non-adherence pattern is flagged.
	AdherenceGapDays float64 `yaml:"adherence_gap_days"`
}

// IntakeConfig holds directory intake settings.
type IntakeConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Intake.Directories {
		cfg.Intake.Directories[i] = expandPath(cfg.Intake.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
