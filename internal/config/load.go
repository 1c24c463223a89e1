package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadOptions selects which files Load reads.
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// BaseDir roots the default paths. Empty means BaseDir().
	BaseDir string
	// ProjectDir is searched for a .tremstore.yaml overlay. Empty skips the overlay.
	ProjectDir string
}

// Load resolves the configuration described in the package doc.
func Load(opts LoadOptions) (*Config, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = BaseDir()
	}
	cfg := Default(baseDir)

	path := opts.Path
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(baseDir, FileName)
	}

	if err := cfg.loadFile(path); err != nil {
		if !errors.Is(err, ErrConfigNotFound) || explicit {
			return nil, err
		}
	}

	if opts.ProjectDir != "" {
		overlay := filepath.Join(opts.ProjectDir, ProjectFileName)
		if _, err := os.Stat(overlay); err == nil {
			if err = ShallowMergeYAML(cfg, overlay); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
