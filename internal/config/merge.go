package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyEnvironment = "environment"
	keyCache       = "cache"
	keyFeeds       = "feeds"
	keyGitHub      = "github"
	keyInstall     = "install"
	keyLogging     = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyEnvironment: true,
	keyCache:       true,
	keyFeeds:       true,
	keyGitHub:      true,
	keyInstall:     true,
	keyLogging:     true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Fields set inside an overlay section replace the
// matching fields of that section. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes node onto a copy of the section named key and
// stores the copy back, so a decode error leaves target untouched.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyEnvironment:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Environment = v
	case keyCache:
		v := target.Cache
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keyFeeds:
		v := target.Feeds
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Feeds = v
	case keyGitHub:
		v := target.GitHub
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.GitHub = v
	case keyInstall:
		v := target.Install
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Install = v
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
