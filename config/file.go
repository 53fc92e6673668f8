package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML override file. Every field is optional; unset
// fields keep their defaults. Durations use Go duration syntax ("700ms").
type FileConfig struct {
	BaseURL        string   `yaml:"base_url"`
	ListingPages   []string `yaml:"listing_pages"`
	FeedURL        string   `yaml:"feed_url"`
	Delay          string   `yaml:"delay"`
	RequestTimeout string   `yaml:"request_timeout"`
	RetryMax       *int     `yaml:"retry_max"`
	UserAgent      string   `yaml:"user_agent"`
	DenySections   []string `yaml:"deny_sections"`
	OutputDir      string   `yaml:"output_dir"`
	LedgerPath     string   `yaml:"ledger_path"`
}

// LoadFile reads a YAML override file. Returns nil if the file doesn't
// exist (not an error). Returns an error if the file exists but cannot be
// parsed.
func LoadFile(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &fc, nil
}

// Apply overlays the file values onto cfg.
func (fc *FileConfig) Apply(cfg *Config) error {
	if fc == nil {
		return nil
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if len(fc.ListingPages) > 0 {
		cfg.ListingPages = fc.ListingPages
	}
	if fc.FeedURL != "" {
		cfg.FeedURL = fc.FeedURL
	}
	if fc.Delay != "" {
		d, err := time.ParseDuration(fc.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", fc.Delay, err)
		}
		cfg.Delay = d
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", fc.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if fc.RetryMax != nil {
		cfg.RetryMax = *fc.RetryMax
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if len(fc.DenySections) > 0 {
		cfg.DenySections = fc.DenySections
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.LedgerPath != "" {
		cfg.LedgerPath = fc.LedgerPath
	}
	return nil
}
