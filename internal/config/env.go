package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names.
const (
	EnvConfigPath   = "TREMSTORE_CONFIG"
	EnvCacheTTL     = "TREMSTORE_CACHE_TTL"
	EnvCacheDir     = "TREMSTORE_CACHE_DIR"
	EnvStoreBackend = "TREMSTORE_STORE_BACKEND"
	EnvLogLevel     = "TREMSTORE_LOG_LEVEL"
	EnvEnvironment  = "TREMSTORE_ENV"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

// ApplyEnv overlays environment variables onto c.
// An unparsable TREMSTORE_CACHE_TTL is an error rather than silently ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := ParseTTL(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.Cache.TTL = Duration(ttl)
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		c.Environment = strings.ToLower(v)
	}
	if v := os.Getenv(EnvGitHubToken); v != "" {
		c.GitHub.Token = v
	}
	return nil
}
