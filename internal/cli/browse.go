package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/fetcher"
	"github.com/exptechtw/tremstore/internal/tui"
)

// newBrowseCmd opens the interactive catalog browser.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the plugin catalog interactively",
		Long: `Open a full-screen browser over the plugin catalog.

Keys: ↑/↓ move, enter details, / filter, s sort field, o sort order,
r refresh, esc back, q quit.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if !a.isTTY() {
		return usageError("browse needs an interactive terminal; use 'tremstore plugins list' instead")
	}

	l, err := a.pluginsLoader()
	if err != nil {
		return err
	}
	loadFn := func(ctx context.Context, force bool) (*fetcher.Result[[]catalog.Plugin], error) {
		return l.Load(ctx, force || a.refresh)
	}

	ctx := cmd.Context()
	model := tui.NewBrowserModel(ctx, loadFn, tui.BrowserOptions{
		VerifiedAuthor: a.cfg.Install.VerifiedAuthor,
		InstallScheme:  a.cfg.Install.Scheme,
		Readme:         a.github.Readme,
		Now:            a.now,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	a.setEventSink(func(e fetcher.Event) {
		program.Send(tui.LoadEventMsg{Event: e})
	})
	defer a.setEventSink(a.printEvent)

	logger.Debug().Ctx(ctx).Str("operation", "browse").Msg("starting catalog browser")
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running catalog browser: %w", err)
	}

	// An unavailable catalog is reported after the alternate screen is gone.
	if bm, ok := final.(tui.BrowserModel); ok && errors.Is(bm.Err(), fetcher.ErrUnavailable) {
		return &ExitError{
			Code: ExitCodeUnavailable,
			Err:  fmt.Errorf("unable to load plugins (run again or use --refresh): %w", bm.Err()),
		}
	}
	return nil
}
