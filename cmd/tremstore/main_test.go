package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exptechtw/tremstore/internal/cli"
	"github.com/exptechtw/tremstore/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "tremstore", root.Use)
		assert.Equal(t, version.GetVersion(), root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"generic", errors.New("boom"), cli.ExitCodeError},
		{"usage", &cli.ExitError{Code: cli.ExitCodeUsage, Err: errors.New("bad flag")}, cli.ExitCodeUsage},
		{
			"wrapped unavailable",
			errors.Join(fmt.Errorf("plugins: %w", &cli.ExitError{Code: cli.ExitCodeUnavailable}), nil),
			cli.ExitCodeUnavailable,
		},
		{"interrupted", fmt.Errorf("loading: %w", context.Canceled), 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
