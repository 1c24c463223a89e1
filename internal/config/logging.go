package config

import "github.com/exptechtw/tremstore/internal/logging"

// ToLoggingConfig converts the YAML logging section into a logging.Config.
// debug forces debug level and console output, matching the --debug flag.
func (lc LoggingConfig) ToLoggingConfig(debug bool) logging.Config {
	out := logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
	}
	if debug {
		out.Level = "debug"
		out.Format = logging.FormatConsole
	}
	return out
}
