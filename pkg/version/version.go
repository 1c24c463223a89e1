// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, overridden with -ldflags "-X github.com/exptechtw/tremstore/pkg/version.version=...".
//
//nolint:gochecknoglobals // Link-time injected values.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// UserAgent returns the User-Agent header value sent with feed requests.
func UserAgent() string {
	return fmt.Sprintf("tremstore/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}
