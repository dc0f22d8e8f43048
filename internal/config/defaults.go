package config

import "time"

const (
	// DefaultConfigPath is relative to the working directory, like the
	// artifacts directory the maintenance tools run against.
	DefaultConfigPath = "sadb.yml"
	DefaultEnvFile    = ".env"

	DefaultArtifactsDir = "artifacts"
	DefaultCatalogFile  = "repo.yaml"
	DefaultHistoryDB    = "sadb-history.db"

	// Flathub naming used when importing a Flatpak application
	DefaultPrimarySrc   = "flathub"
	DefaultArch         = "x86_64"
	DefaultBranch       = "stable"
	DefaultIconTemplate = "https://flathub.org/repo/appstream/{arch}/icons/128x128/{id}.png"

	DefaultTimeout         = 15 * time.Second
	DefaultRetries         = 3
	DefaultRequestsPerSec  = 0
	DefaultPickConcurrency = 4

	// Log levels
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// EnvPrefix prefixes environment overrides, e.g. SADB_ARTIFACTS_DIR.
	EnvPrefix = "SADB_"
)

// DefaultAppStreamPaths are the collections a system-wide Flatpak keeps
// for the flathub remote.
var DefaultAppStreamPaths = []string{
	"/var/lib/flatpak/appstream/flathub/x86_64/active/appstream.xml.gz",
	"/var/lib/flatpak/appstream/flathub/x86_64/active/appstream.xml",
}

// Default returns a config populated with defaults.
func Default() *Config {
	return &Config{
		ArtifactsDir: DefaultArtifactsDir,
		CatalogFile:  DefaultCatalogFile,
		HistoryDB:    DefaultHistoryDB,
		LogLevel:     LogLevelInfo,
		AppStream: AppStreamConfig{
			Paths: append([]string(nil), DefaultAppStreamPaths...),
		},
		Import: ImportConfig{
			PrimarySrc:      DefaultPrimarySrc,
			Arch:            DefaultArch,
			Branch:          DefaultBranch,
			IconURLTemplate: DefaultIconTemplate,
			PickConcurrency: DefaultPickConcurrency,
		},
		HTTP: HTTPConfig{
			Timeout:        DefaultTimeout,
			Retries:        DefaultRetries,
			RequestsPerSec: DefaultRequestsPerSec,
		},
	}
}
