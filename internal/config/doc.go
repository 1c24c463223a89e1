// Package config loads tremstore's YAML configuration.
//
// Resolution order, later wins:
//  1. built-in defaults (Default)
//  2. the user config file (~/.tremstore/config.yaml, --config, TREMSTORE_CONFIG)
//  3. a project overlay (.tremstore.yaml in the working directory), merged by top-level key
//  4. environment variables (TREMSTORE_*, GITHUB_TOKEN)
//
// The result is validated with go-playground/validator before use.
package config
