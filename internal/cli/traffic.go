package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/traffic"
)

const chartBarWidth = 30

type trafficOutput struct {
	Count       int             `json:"count"`
	Uniques     int             `json:"uniques"`
	CollectedAt time.Time       `json:"collected_at"`
	Points      []traffic.Point `json:"points"`
}

// newTrafficCmd prints the catalog's daily page views.
func newTrafficCmd() *cobra.Command {
	var utc bool

	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Show daily visits to the plugin catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			res, err := a.loadTraffic(cmd.Context())
			if err != nil {
				return err
			}

			loc := time.Local
			if utc {
				loc = time.UTC
			}
			data := res.Value
			points := traffic.Chart(data, loc)

			out := cmd.OutOrStdout()
			switch a.output {
			case outputJSON:
				return renderJSON(out, trafficOutput{
					Count: data.Count, Uniques: data.Uniques, CollectedAt: data.CollectedAt, Points: points,
				})
			case outputNDJSON:
				return renderNDJSON(out, points)
			case outputTable:
			}

			peak := 0
			if v, ok := traffic.Peak(data); ok {
				peak = v.Count
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "DATE\tVISITS\tUNIQUE\t")
			for _, p := range points {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					p.Date, display.Number(int64(p.Visits)), display.Number(int64(p.Unique)), bar(p.Visits, peak))
			}
			if err = tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %s visits, %s unique\n",
				display.Number(int64(data.Count)), display.Number(int64(data.Uniques)))
			if !data.CollectedAt.IsZero() {
				fmt.Fprintf(out, "Collected: %s\n", display.Timestamp(data.CollectedAt))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&utc, "utc", false, "group days in UTC instead of local time")
	return cmd
}

func bar(value, peak int) string {
	if peak <= 0 || value <= 0 {
		return ""
	}
	n := max(value*chartBarWidth/peak, 1)
	out := make([]rune, n)
	for i := range out {
		out[i] = '█'
	}
	return string(out)
}
