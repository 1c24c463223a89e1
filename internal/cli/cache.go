package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/exptechtw/tremstore/internal/display"
	"github.com/exptechtw/tremstore/internal/fetcher"
)

// feedNames are the cached feeds in display order.
var feedNames = []string{"plugins", "releases", "traffic"} //nolint:gochecknoglobals // Constant list.

type cacheStatusRow struct {
	Feed      string        `json:"feed"`
	DataKey   string        `json:"data_key"`
	Cached    bool          `json:"cached"`
	FetchedAt *time.Time    `json:"fetched_at,omitempty"`
	Age       time.Duration `json:"age_ns"`
	TTL       time.Duration `json:"ttl_ns"`
	Fresh     bool          `json:"fresh"`
	ExpiresIn time.Duration `json:"expires_in_ns"`
	Bytes     int           `json:"bytes"`
}

// feedHandle erases the value type of a loader for cache maintenance.
type feedHandle struct {
	name  string
	keys  fetcher.Keys
	ttl   time.Duration
	peek  func(context.Context) (*fetcher.CacheEntry, bool, error)
	clear func(context.Context) error
}

func handleOf[T any](l *fetcher.Loader[T]) feedHandle {
	return feedHandle{
		name:  l.Name(),
		keys:  l.Keys(),
		ttl:   l.Policy().TTL,
		peek:  l.Peek,
		clear: l.Clear,
	}
}

func (a *app) feedHandles() ([]feedHandle, error) {
	pl, err := a.pluginsLoader()
	if err != nil {
		return nil, err
	}
	rl, err := a.releasesLoader()
	if err != nil {
		return nil, err
	}
	tl, err := a.trafficLoader()
	if err != nil {
		return nil, err
	}
	return []feedHandle{handleOf(pl), handleOf(rl), handleOf(tl)}, nil
}

func (a *app) now() time.Time {
	if a.deps.Clock != nil {
		return a.deps.Clock.Now()
	}
	return time.Now()
}

// newCacheStatusCmd reports the age and freshness of each cached feed.
func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is cached for each feed and whether it is fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			handles, err := a.feedHandles()
			if err != nil {
				return err
			}

			now := a.now()
			rows := make([]cacheStatusRow, len(handles))
			g, gCtx := errgroup.WithContext(cmd.Context())
			for i, h := range handles {
				g.Go(func() error {
					row, peekErr := cacheStatus(gCtx, h, now)
					rows[i] = row
					return peekErr
				})
			}
			if err = g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch a.output {
			case outputJSON:
				return renderJSON(out, map[string]any{
					"backend": a.cfg.Cache.Backend,
					"feeds":   rows,
				})
			case outputNDJSON:
				return renderNDJSON(out, rows)
			case outputTable:
			}

			fmt.Fprintf(out, "Store: %s\n\n", a.cfg.Cache.Backend)
			tw := newTable(out)
			fmt.Fprintln(tw, "FEED\tCACHED\tFETCHED\tAGE\tTTL\tSTATE\tSIZE")
			for _, r := range rows {
				if !r.Cached {
					fmt.Fprintf(tw, "%s\tno\t-\t-\t%s\tempty\t-\n", r.Feed, display.Duration(r.TTL))
					continue
				}
				state := "stale"
				if r.Fresh {
					state = "fresh (expires in " + display.Duration(r.ExpiresIn) + ")"
				}
				fmt.Fprintf(tw, "%s\tyes\t%s\t%s\t%s\t%s\t%s\n",
					r.Feed,
					display.Timestamp(*r.FetchedAt),
					display.Duration(r.Age),
					display.Duration(r.TTL),
					state,
					display.Number(int64(r.Bytes))+" B",
				)
			}
			return tw.Flush()
		},
	}
}

func cacheStatus(ctx context.Context, h feedHandle, now time.Time) (cacheStatusRow, error) {
	row := cacheStatusRow{Feed: h.name, DataKey: h.keys.Data, TTL: h.ttl}
	entry, ok, err := h.peek(ctx)
	if err != nil {
		return row, fmt.Errorf("reading %s cache: %w", h.name, err)
	}
	if !ok {
		return row, nil
	}
	fetchedAt := entry.FetchedAt
	row.Cached = true
	row.FetchedAt = &fetchedAt
	row.Age = entry.Age(now)
	row.Fresh = entry.IsFresh(now, h.ttl)
	row.ExpiresIn = entry.TimeUntilExpiration(now, h.ttl)
	row.Bytes = len(entry.Payload)
	return row, nil
}

// newCacheClearCmd removes cached feeds.
func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "clear [feed...]",
		Short:     "Remove cached feeds (all feeds when none are named)",
		Example:   "  tremstore cache clear\n  tremstore cache clear plugins traffic",
		ValidArgs: feedNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			for _, name := range args {
				if !slices.Contains(feedNames, name) {
					return usageError("unknown feed %q (use %s)", name, strings.Join(feedNames, ", "))
				}
			}
			handles, err := a.feedHandles()
			if err != nil {
				return err
			}

			var cleared []string
			g, gCtx := errgroup.WithContext(cmd.Context())
			for _, h := range handles {
				if len(args) > 0 && !slices.Contains(args, h.name) {
					continue
				}
				cleared = append(cleared, h.name)
				g.Go(func() error {
					if clearErr := h.clear(gCtx); clearErr != nil {
						return fmt.Errorf("clearing %s: %w", h.name, clearErr)
					}
					return nil
				})
			}
			if err = g.Wait(); err != nil {
				return err
			}

			logger.Info().Ctx(cmd.Context()).Strs("feeds", cleared).Msg("cache cleared")
			if a.output != outputTable {
				return renderJSON(cmd.OutOrStdout(), map[string]any{"cleared": cleared})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared: %s\n", strings.Join(cleared, ", "))
			return nil
		},
	}
}
