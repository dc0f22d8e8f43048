package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration written to sadb.yml.
type Config struct {
	ArtifactsDir string          `yaml:"artifacts_dir"`
	CatalogFile  string          `yaml:"catalog_file"`
	HistoryDB    string          `yaml:"history_db"`
	LogLevel     string          `yaml:"log_level"`
	AppStream    AppStreamConfig `yaml:"appstream"`
	Import       ImportConfig    `yaml:"import"`
	HTTP         HTTPConfig      `yaml:"http"`
}

type AppStreamConfig struct {
	Paths []string `yaml:"paths"`
	// Origin restricts lookups to components from one collection origin.
	// Empty matches any origin.
	Origin string `yaml:"origin,omitempty"`
}

type ImportConfig struct {
	PrimarySrc      string `yaml:"primary_src"`
	Arch            string `yaml:"arch"`
	Branch          string `yaml:"branch"`
	IconURLTemplate string `yaml:"icon_url_template"`
	PickConcurrency int    `yaml:"pick_concurrency"`
}

type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
}

// CatalogPath returns the path of repo.yaml. A relative catalog_file is
// resolved against the artifacts directory.
func (c *Config) CatalogPath() string {
	if filepath.IsAbs(c.CatalogFile) {
		return c.CatalogFile
	}
	return filepath.Join(c.ArtifactsDir, c.CatalogFile)
}

// HistoryPath returns the path of the history database, resolved like
// CatalogPath.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.HistoryDB) {
		return c.HistoryDB
	}
	return filepath.Join(c.ArtifactsDir, c.HistoryDB)
}

// Load reads a config file layered over the defaults. A missing file is not
// an error. Environment overrides (optionally from a .env file next to the
// config) are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnv applies SADB_* overrides.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("ARTIFACTS_DIR", &c.ArtifactsDir)
	str("CATALOG_FILE", &c.CatalogFile)
	str("HISTORY_DB", &c.HistoryDB)
	str("LOG_LEVEL", &c.LogLevel)
	str("APPSTREAM_ORIGIN", &c.AppStream.Origin)

	if v, ok := lookup(EnvPrefix + "APPSTREAM_PATHS"); ok && v != "" {
		c.AppStream.Paths = filepath.SplitList(v)
	}
	if v, ok := lookup(EnvPrefix + "HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTP.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "HTTP_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_RETRIES: %w", EnvPrefix, err)
		}
		c.HTTP.Retries = n
	}
	if v, ok := lookup(EnvPrefix + "HTTP_REQUESTS_PER_SEC"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sHTTP_REQUESTS_PER_SEC: %w", EnvPrefix, err)
		}
		c.HTTP.RequestsPerSec = f
	}
	return nil
}

// Validate checks that all required fields are present and values are in range.
func (c *Config) Validate() error {
	if c.ArtifactsDir == "" {
		return fmt.Errorf("artifacts_dir is required")
	}
	if c.CatalogFile == "" {
		return fmt.Errorf("catalog_file is required")
	}
	if c.HistoryDB == "" {
		return fmt.Errorf("history_db is required")
	}

	switch strings.ToLower(c.LogLevel) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// ok
	default:
		return fmt.Errorf("log_level must be %q, %q, %q, or %q", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)
	}

	if c.Import.PrimarySrc == "" {
		return fmt.Errorf("import.primary_src is required")
	}
	if c.Import.Arch == "" || c.Import.Branch == "" {
		return fmt.Errorf("import.arch and import.branch are required")
	}
	if !strings.Contains(c.Import.IconURLTemplate, "{id}") {
		return fmt.Errorf("import.icon_url_template must contain {id}")
	}
	if c.Import.PickConcurrency < 1 {
		return fmt.Errorf("import.pick_concurrency must be >= 1")
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must be >= 0")
	}
	if c.HTTP.RequestsPerSec < 0 {
		return fmt.Errorf("http.requests_per_sec must be >= 0")
	}
	return nil
}

// Save writes the config to the given path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
