package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// File and directory names.
const (
	DirName         = ".tremstore"
	FileName        = "config.yaml"
	ProjectFileName = ".tremstore.yaml"
	cacheDirName    = "cache"
	sqliteFileName  = "cache.db"
)

// Feed defaults, matching the public TREM plugin repository.
const (
	DefaultPluginsURL  = "https://raw.githack.com/ExpTechTW/trem-plugins/refs/heads/main/data/repository_stats.json"
	DefaultTrafficURL  = "https://raw.githubusercontent.com/ExpTechTW/trem-plugins/main/data/traffic.json"
	DefaultReleasesURL = "https://api.github.com/repos/ExpTechTW/TREM-Lite/releases"

	DefaultRawBaseURL   = "https://raw.githubusercontent.com"
	DefaultAPIBaseURL   = "https://api.github.com"
	DefaultNotesBaseURL = "https://raw.githubusercontent.com/ExpTechTW/trem-plugins/main/public/releases"
	DefaultNotesDir     = "public/releases"

	DefaultInstallScheme  = "trem-lite"
	DefaultVerifiedAuthor = "ExpTechTW"

	DefaultMaxRetries  = 3
	DefaultBackoffBase = time.Second
	DefaultTTL         = 10 * time.Minute
)

// Store keys. These names are shared with the desktop catalog's local storage.
const (
	KeyPlugins         = "tremPlugins"
	KeyPluginsFetched  = "lastPluginsFetch"
	KeyTraffic         = "tremTraffic"
	KeyTrafficFetched  = "lastTrafficFetch"
	KeyReleases        = "tremReleases"
	KeyReleasesFetched = "lastReleasesFetch"
)

const (
	DefaultStoreBackend  = "file"
	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "console"
)

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Config is the full tremstore configuration.
type Config struct {
	Environment string        `yaml:"environment" validate:"oneof=production development"`
	Cache       CacheConfig   `yaml:"cache"`
	Feeds       FeedsConfig   `yaml:"feeds"`
	GitHub      GitHubConfig  `yaml:"github"`
	Install     InstallConfig `yaml:"install"`
	Logging     LoggingConfig `yaml:"logging"`
}

// CacheConfig controls the local store and the shared fetch policy.
type CacheConfig struct {
	Backend     string   `yaml:"backend"      validate:"oneof=file sqlite memory"`
	Dir         string   `yaml:"dir"          validate:"required_if=Backend file"`
	SQLitePath  string   `yaml:"sqlite_path"  validate:"required_if=Backend sqlite"`
	TTL         Duration `yaml:"ttl"          validate:"gte=0"`
	MaxRetries  int      `yaml:"max_retries"  validate:"gte=0,lte=10"`
	BackoffBase Duration `yaml:"backoff_base" validate:"gte=0"`
}

// FeedConfig describes one remote JSON feed and its store keys.
// A zero TTL inherits CacheConfig.TTL.
type FeedConfig struct {
	URL          string   `yaml:"url"           validate:"required,url"`
	DataKey      string   `yaml:"data_key"      validate:"required"`
	TimestampKey string   `yaml:"timestamp_key" validate:"required,nefield=DataKey"`
	TTL          Duration `yaml:"ttl"           validate:"gte=0"`
}

// FeedsConfig groups the three feeds.
type FeedsConfig struct {
	Plugins  FeedConfig `yaml:"plugins"`
	Traffic  FeedConfig `yaml:"traffic"`
	Releases FeedConfig `yaml:"releases"`
}

// GitHubConfig holds GitHub endpoints used outside the cached feeds.
type GitHubConfig struct {
	RawBaseURL   string `yaml:"raw_base_url"   validate:"required,url"`
	APIBaseURL   string `yaml:"api_base_url"   validate:"required,url"`
	NotesBaseURL string `yaml:"notes_base_url" validate:"required,url"`
	NotesDir     string `yaml:"notes_dir"`
	// Token is read from GITHUB_TOKEN only and never written back.
	Token string `yaml:"-"`
}

// InstallConfig controls plugin install links.
type InstallConfig struct {
	Scheme         string `yaml:"scheme"          validate:"required"`
	VerifiedAuthor string `yaml:"verified_author" validate:"required"`
}

// LoggingConfig mirrors logging.Config in YAML form.
type LoggingConfig struct {
	Level  string `yaml:"level"  validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration rooted at baseDir
// (normally ~/.tremstore).
func Default(baseDir string) *Config {
	return &Config{
		Environment: EnvProduction,
		Cache: CacheConfig{
			Backend:     DefaultStoreBackend,
			Dir:         filepath.Join(baseDir, cacheDirName),
			SQLitePath:  filepath.Join(baseDir, sqliteFileName),
			TTL:         Duration(DefaultTTL),
			MaxRetries:  DefaultMaxRetries,
			BackoffBase: Duration(DefaultBackoffBase),
		},
		Feeds: FeedsConfig{
			Plugins:  FeedConfig{URL: DefaultPluginsURL, DataKey: KeyPlugins, TimestampKey: KeyPluginsFetched},
			Traffic:  FeedConfig{URL: DefaultTrafficURL, DataKey: KeyTraffic, TimestampKey: KeyTrafficFetched},
			Releases: FeedConfig{URL: DefaultReleasesURL, DataKey: KeyReleases, TimestampKey: KeyReleasesFetched},
		},
		GitHub: GitHubConfig{
			RawBaseURL:   DefaultRawBaseURL,
			APIBaseURL:   DefaultAPIBaseURL,
			NotesBaseURL: DefaultNotesBaseURL,
			NotesDir:     DefaultNotesDir,
		},
		Install: InstallConfig{
			Scheme:         DefaultInstallScheme,
			VerifiedAuthor: DefaultVerifiedAuthor,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// BaseDir returns ~/.tremstore, or a relative .tremstore when the home
// directory cannot be resolved.
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns the default user config file path.
func DefaultPath() string {
	return filepath.Join(BaseDir(), FileName)
}

// FeedTTL returns the effective TTL for feed.
func (c *Config) FeedTTL(feed FeedConfig) time.Duration {
	if feed.TTL > 0 {
		return feed.TTL.Duration()
	}
	return c.Cache.TTL.Duration()
}

// IsDevelopment reports whether the development environment is selected.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Save writes c to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
