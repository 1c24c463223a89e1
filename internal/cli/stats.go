package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/fetcher"
	"github.com/exptechtw/tremstore/internal/traffic"
)

type statsOutput struct {
	catalog.Stats

	Visits        int            `json:"visits"`
	UniqueVisits  int            `json:"unique_visits"`
	PluginsStatus fetcher.Status `json:"plugins_status"`
	TrafficStatus fetcher.Status `json:"traffic_status"`
}

// newStatsCmd prints catalog-wide totals.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show plugin, download, author and visit totals",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	var (
		plugins *fetcher.Result[[]catalog.Plugin]
		views   *fetcher.Result[traffic.Data]
	)
	g, gCtx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var loadErr error
		plugins, loadErr = a.loadPlugins(gCtx)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		views, loadErr = a.loadTraffic(gCtx)
		return loadErr
	})
	if err = g.Wait(); err != nil {
		return err
	}

	out := statsOutput{
		Stats:         catalog.ComputeStats(plugins.Value),
		Visits:        views.Value.Count,
		UniqueVisits:  views.Value.Uniques,
		PluginsStatus: plugins.Status,
		TrafficStatus: views.Status,
	}

	if a.output != outputTable {
		return renderJSON(cmd.OutOrStdout(), out)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "Plugins:\t%s\n", display.Number(int64(out.Plugins)))
	fmt.Fprintf(tw, "Downloads:\t%s\n", display.Number(int64(out.Downloads)))
	fmt.Fprintf(tw, "Authors:\t%s\n", display.Number(int64(out.Authors)))
	fmt.Fprintf(tw, "Visits:\t%s (%s unique)\n",
		display.Number(int64(out.Visits)), display.Number(int64(out.UniqueVisits)))
	return tw.Flush()
}
