package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the default run configuration is valid and matches
// the migration conventions.
func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.ListingPages, 8, "should walk listing pages 1..8")
	assert.Equal(t, "https://roachag.com/Resources/BlogPage/1", cfg.ListingPages[0])
	assert.Equal(t, "https://roachag.com/Resources/BlogPage/8", cfg.ListingPages[7])
	assert.Equal(t, 700*time.Millisecond, cfg.Delay)
	assert.Equal(t, 4, cfg.RetryMax)
	assert.Equal(t, "Resources", cfg.PostSection)
	assert.Equal(t, 10, cfg.MaxPerListing)
	assert.Empty(t, cfg.FeedURL, "feed discovery should be off by default")
	assert.Empty(t, cfg.LedgerPath, "ledger should be off by default")
}

// TestDeniedSections verifies denylist set conversion.
func TestDeniedSections(t *testing.T) {
	cfg := Default()
	denied := cfg.DeniedSections()

	assert.Contains(t, denied, "Presentations")
	assert.Contains(t, denied, "WASDE")
	assert.NotContains(t, denied, "BlogPage")
}

// TestValidate_Errors verifies rejection of broken configurations.
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no listing pages", func(c *Config) { c.ListingPages = nil }},
		{"bad base URL", func(c *Config) { c.BaseURL = "not a url" }},
		{"bad listing URL", func(c *Config) { c.ListingPages = []string{"::bad"} }},
		{"bad feed URL", func(c *Config) { c.FeedURL = "::bad" }},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative retries", func(c *Config) { c.RetryMax = -1 }},
		{"empty post section", func(c *Config) { c.PostSection = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestLoadFile_Missing verifies a missing override file is not an error.
func TestLoadFile_Missing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Nil(t, fc)
}

// TestLoadFile_Apply verifies YAML overrides land on the config.
func TestLoadFile_Apply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: https://example.com
listing_pages:
  - https://example.com/Resources/BlogPage/1
feed_url: https://example.com/feed
delay: 50ms
request_timeout: 5s
retry_max: 2
deny_sections: [About, Calendar]
output_dir: /tmp/out
ledger_path: /tmp/run.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	fc, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, fc)

	cfg := Default()
	require.NoError(t, fc.Apply(cfg))

	assert.Equal(t, "https://example.com", cfg.BaseURL)
	assert.Equal(t, []string{"https://example.com/Resources/BlogPage/1"}, cfg.ListingPages)
	assert.Equal(t, "https://example.com/feed", cfg.FeedURL)
	assert.Equal(t, 50*time.Millisecond, cfg.Delay)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RetryMax)
	assert.Equal(t, []string{"About", "Calendar"}, cfg.DenySections)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "/tmp/run.db", cfg.LedgerPath)
	assert.Equal(t, Default().UserAgent, cfg.UserAgent, "unset fields keep defaults")
}

// TestLoadFile_BadDuration verifies duration parse errors surface.
func TestLoadFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delay: soon\n"), 0o600))

	fc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Error(t, fc.Apply(Default()))
}

// TestApply_Nil verifies a nil file config is a no-op.
func TestApply_Nil(t *testing.T) {
	cfg := Default()
	var fc *FileConfig

	require.NoError(t, fc.Apply(cfg))
	assert.Equal(t, Default().BaseURL, cfg.BaseURL)
}
