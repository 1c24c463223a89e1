package cli

import (
	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/config"
)

// newConfigValidateCmd creates the config validate command. Loading already
// validates, so reaching RunE means the configuration is valid.
func newConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads ~/.tremstore/config.yaml (or --config), the .tremstore.yaml project overlay
and TREMSTORE_* environment overrides, and validates the result.`,
		Example: `  # Validate current configuration
  tremstore config validate

  # Validate and show the effective settings
  tremstore config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			cmd.Printf("Configuration is valid\n")
			if verbose {
				printVerboseDetails(cmd, a.cfg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the effective configuration")
	return cmd
}

// printVerboseDetails prints the effective configuration.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Environment: %s\n", cfg.Environment)
	cmd.Printf("  Store backend: %s\n", cfg.Cache.Backend)
	switch cfg.Cache.Backend {
	case "sqlite":
		cmd.Printf("  SQLite path: %s\n", cfg.Cache.SQLitePath)
	case "file":
		cmd.Printf("  Cache directory: %s\n", cfg.Cache.Dir)
	}
	cmd.Printf("  Cache TTL: %s\n", cfg.Cache.TTL)
	cmd.Printf("  Retries: %d (backoff base %s)\n", cfg.Cache.MaxRetries, cfg.Cache.BackoffBase)
	printFeedDetails(cmd, cfg, "plugins", cfg.Feeds.Plugins)
	printFeedDetails(cmd, cfg, "releases", cfg.Feeds.Releases)
	printFeedDetails(cmd, cfg, "traffic", cfg.Feeds.Traffic)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	if cfg.GitHub.Token != "" {
		cmd.Println("  GitHub token: set")
	}
}

func printFeedDetails(cmd *cobra.Command, cfg *config.Config, name string, feed config.FeedConfig) {
	cmd.Printf("  Feed %s: %s (ttl %s, keys %s/%s)\n",
		name, feed.URL, config.Duration(cfg.FeedTTL(feed)), feed.DataKey, feed.TimestampKey)
}
