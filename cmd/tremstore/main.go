// Command tremstore lists, searches and installs TREM-Lite plugins from the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/exptechtw/tremstore/internal/cli"
	"github.com/exptechtw/tremstore/pkg/version"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(ctx)
}

// exitCode maps a command error to the process exit status. An interrupt
// exits with 130 like a shell would report it.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return cli.ExitCode(err)
}
