package recall

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all recall configuration.
type Config struct {
	DBPath string `yaml:"db_path"`
	// SnapshotPath is the JSON export the browser extension rewrites.
	SnapshotPath string       `yaml:"snapshot_path"`
	Sync         SyncConfig   `yaml:"sync"`
	Enrich       EnrichConfig `yaml:"enrich"`
	Fetch        FetchConfig  `yaml:"fetch"`
	// ExcludedDomains lists domains never indexed: exact hostname matches
	// cover subdomains, glob wildcards and IP-octet patterns are supported.
	ExcludedDomains []string `yaml:"excluded_domains"`
}

// SyncConfig controls the history/bookmark sync engines.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	// RunAtStart runs a history sync immediately at startup. Bookmarks
	// always sync once at startup regardless of this flag.
	RunAtStart bool `yaml:"run_at_start"`
}

// EnrichConfig controls the content enrichment worker.
type EnrichConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	Interval   time.Duration `yaml:"interval"`
	StartDelay time.Duration `yaml:"start_delay"`
}

// FetchConfig controls how page content is retrieved.
type FetchConfig struct {
	// UseBrowser renders pages in headless Chrome instead of plain GET.
	UseBrowser bool          `yaml:"use_browser"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxBytes   int64         `yaml:"max_bytes"`
	UserAgent  string        `yaml:"user_agent"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "recall.db"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "snapshot.json"
	}
	if c.Sync.Interval <= 0 {
		c.Sync.Interval = 5 * time.Minute
	}
	if c.Enrich.BatchSize <= 0 {
		c.Enrich.BatchSize = 10
	}
	if c.Enrich.Interval <= 0 {
		c.Enrich.Interval = 5 * time.Minute
	}
	if c.Enrich.StartDelay <= 0 {
		c.Enrich.StartDelay = 30 * time.Second
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
