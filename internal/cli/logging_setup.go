package cli

import (
	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/logging"
)

// setupLogging configures logging from the config file, environment and CLI
// flags, then stores the logger, a trace id and the app on the command context.
func setupLogging(cmd *cobra.Command, a *app) {
	debug, _ := cmd.Flags().GetBool("debug")
	loggingCfg := a.cfg.Logging.ToLoggingConfig(debug)
	if debug {
		loggingCfg.File = ""
	}

	result := logging.NewLoggerWithPath(loggingCfg)
	a.logResult = result
	logger = logging.ComponentLogger(result.Logger, "cli")
	logging.SetDefault(result.Logger)

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = result.Logger.WithContext(ctx)
	ctx = withApp(ctx, a)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).
		Str("command", cmd.CommandPath()).
		Str("environment", a.cfg.Environment).
		Str("store", a.cfg.Cache.Backend).
		Dur("ttl", a.cfg.Cache.TTL.Duration()).
		Msg("command started")
}

// cleanupLogging closes the log file handle.
func cleanupLogging(a *app) error {
	return a.logResult.Close()
}
