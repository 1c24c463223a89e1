package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/config"
	"github.com/exptechtw/tremstore/internal/store"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the tremstore CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithDeps(ver, Deps{})
}

// NewRootCmdWithDeps creates the root command with injected collaborators for testability.
func NewRootCmdWithDeps(ver string, deps Deps) *cobra.Command {
	var a *app

	cmd := &cobra.Command{
		Use:           "tremstore",
		Short:         "TREM-Lite plugin catalog and release browser",
		Long:          "tremstore lists, searches and installs TREM-Lite plugins and downloads TREM-Lite releases, caching the remote feeds locally.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = setupApp(cmd, deps)
			return err
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default ~/.tremstore/config.yaml)")
	cmd.PersistentFlags().Bool("refresh", false, "ignore fresh cached data and fetch again")
	cmd.PersistentFlags().Bool("no-cache", false, "keep fetched data in memory for this run only")
	cmd.PersistentFlags().
		String("cache-ttl", "", "cache TTL in seconds or as a duration like 5m (overrides config file and env var)")
	cmd.PersistentFlags().StringP("output", "o", string(outputTable), "output format: table, json or ndjson")
	cmd.PersistentFlags().String("metrics-file", "", "write fetch metrics in Prometheus text format to this file")

	cmd.AddCommand(
		newPluginsCmd(), newStatsCmd(), newTrafficCmd(),
		newReleasesCmd(), newCacheCmd(), newBrowseCmd(), newConfigCmd(),
	)
	withCleanup(cmd, func(c *cobra.Command) error {
		err := cleanupApp(c, a)
		a = nil
		return err
	})
	return cmd
}

// withCleanup wraps every runnable command so cleanup runs after RunE, also
// when it fails. Cobra skips post-run hooks on error.
func withCleanup(cmd *cobra.Command, cleanup func(*cobra.Command) error) {
	for _, sub := range cmd.Commands() {
		withCleanup(sub, cleanup)
	}
	if cmd.RunE == nil {
		return
	}
	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		return errors.Join(err, cleanup(c))
	}
}

// setupApp loads configuration, applies flag overrides, configures logging and
// stores the shared app state on the command context.
func setupApp(cmd *cobra.Command, deps Deps) (*app, error) {
	flags := cmd.Flags()

	output, _ := flags.GetString("output")
	format, err := parseOutputFormat(output)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if cmd.Annotations[annotationSkipConfigLoad] == "true" {
		cfg = config.Default(baseDirOf(deps))
		deps.Store = store.NewMemoryStore()
	} else {
		configPath, _ := flags.GetString("config")
		projectDir := deps.ProjectDir
		if projectDir == "" {
			projectDir, _ = os.Getwd()
		}
		cfg, err = config.Load(config.LoadOptions{
			Path:       configPath,
			BaseDir:    deps.BaseDir,
			ProjectDir: projectDir,
		})
		if err != nil {
			return nil, &ExitError{Code: ExitCodeUsage, Err: fmt.Errorf("loading config: %w", err)}
		}
	}

	if flags.Changed("cache-ttl") {
		raw, _ := flags.GetString("cache-ttl")
		ttl, ttlErr := config.ParseTTL(raw)
		if ttlErr != nil {
			return nil, usageError("--cache-ttl: %w", ttlErr)
		}
		cfg.Cache.TTL = config.Duration(ttl)
		cfg.Feeds.Plugins.TTL = 0
		cfg.Feeds.Traffic.TTL = 0
		cfg.Feeds.Releases.TTL = 0
	}

	if noCache, _ := flags.GetBool("no-cache"); noCache && deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}

	a, err := newApp(cfg, deps, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	a.output = format
	a.refresh, _ = flags.GetBool("refresh")
	a.metricsFile, _ = flags.GetString("metrics-file")

	setupLogging(cmd, a)
	return a, nil
}

func baseDirOf(deps Deps) string {
	if deps.BaseDir != "" {
		return deps.BaseDir
	}
	return config.BaseDir()
}

func cleanupApp(cmd *cobra.Command, a *app) error {
	if a == nil {
		return nil
	}
	metricsErr := a.writeMetrics()
	if err := a.close(); err != nil {
		logger.Warn().Ctx(cmd.Context()).Err(err).Msg("closing cache store")
	}
	if err := cleanupLogging(a); err != nil {
		return err
	}
	return metricsErr
}

const rootCmdExample = `  # List plugins, most downloaded first
  tremstore plugins list --sort downloads

  # Search plugins by name, description or author
  tremstore plugins list websocket exptech

  # Show one plugin with its releases and dependencies
  tremstore plugins show tts

  # Print the install link for a plugin and open it in TREM-Lite
  tremstore plugins install tts --open

  # Download the TREM-Lite installer for this machine
  tremstore releases download --save ~/Downloads

  # Browse the catalog interactively
  tremstore browse

  # Ignore the cache and fetch everything again
  tremstore stats --refresh`

// newPluginsCmd creates the plugins command group.
func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plugins", Aliases: []string{"plugin"}, Short: "Plugin catalog commands"}
	cmd.AddCommand(
		newPluginsListCmd(), newPluginsShowCmd(), newPluginsReadmeCmd(),
		newPluginsDepsCmd(), newPluginsInstallCmd(),
	)
	return cmd
}

// newReleasesCmd creates the releases command group.
func newReleasesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "releases", Aliases: []string{"release"}, Short: "TREM-Lite application releases"}
	cmd.AddCommand(
		newReleasesListCmd(), newReleasesDownloadCmd(),
		newReleasesNotesCmd(), newReleasesSizesCmd(),
	)
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Inspect and clear the local feed cache"}
	cmd.AddCommand(newCacheStatusCmd(), newCacheClearCmd())
	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}
