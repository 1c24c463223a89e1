package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/exptechtw/tremstore/internal/catalog"
	"github.com/exptechtw/tremstore/internal/config"
	"github.com/exptechtw/tremstore/internal/fetcher"
	"github.com/exptechtw/tremstore/internal/github"
	"github.com/exptechtw/tremstore/internal/logging"
	"github.com/exptechtw/tremstore/internal/releases"
	"github.com/exptechtw/tremstore/internal/store"
	"github.com/exptechtw/tremstore/internal/traffic"
	"github.com/exptechtw/tremstore/internal/tui"
)

// Deps are the injectable collaborators of the command tree. Zero fields use
// the real implementations.
type Deps struct {
	// BaseDir replaces ~/.tremstore.
	BaseDir string
	// ProjectDir is searched for a .tremstore.yaml overlay. Empty means the working directory.
	ProjectDir string
	Store      store.Store
	Source     fetcher.Source
	Sleeper    fetcher.Sleeper
	Clock      fetcher.Clock
	HTTPClient *http.Client
	// OpenURL hands a URL to the operating system.
	OpenURL func(url string) error
	// IsTTY reports an interactive terminal.
	IsTTY func() bool
	Stdin io.Reader
}

type appKey struct{}

// app is the per-invocation state shared by all commands.
type app struct {
	cfg      *config.Config
	store    store.Store
	group    *singleflight.Group
	registry *prometheus.Registry
	metrics  *fetcher.Metrics
	github   *github.Client
	source   fetcher.Source
	deps     Deps

	refresh     bool
	output      outputFormat
	metricsFile string
	stderr      io.Writer
	logResult   logging.LogPathResult

	mu      sync.Mutex
	onEvent func(fetcher.Event)
}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

func appFrom(cmd *cobra.Command) (*app, error) {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok && a != nil {
		return a, nil
	}
	return nil, errors.New("command not initialised")
}

func newApp(cfg *config.Config, deps Deps, stderr io.Writer) (*app, error) {
	st := deps.Store
	if st == nil {
		var err error
		st, err = store.Open(store.Options{
			Backend:    cfg.Cache.Backend,
			Dir:        cfg.Cache.Dir,
			SQLitePath: cfg.Cache.SQLitePath,
		})
		if err != nil {
			return nil, fmt.Errorf("opening cache store: %w", err)
		}
	}

	gh := github.NewClient()
	gh.RawBaseURL = cfg.GitHub.RawBaseURL
	gh.APIBaseURL = cfg.GitHub.APIBaseURL
	gh.Token = cfg.GitHub.Token
	if deps.HTTPClient != nil {
		gh.HTTPClient = deps.HTTPClient
	}

	src := deps.Source
	if src == nil {
		hs := fetcher.NewHTTPSource()
		hs.Token = cfg.GitHub.Token
		if deps.HTTPClient != nil {
			hs.HTTPClient = deps.HTTPClient
		}
		src = hs
	}

	reg := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		store:    st,
		group:    &singleflight.Group{},
		registry: reg,
		metrics:  fetcher.NewMetrics(reg),
		github:   gh,
		source:   src,
		deps:     deps,
		stderr:   stderr,
	}
	a.onEvent = a.printEvent
	return a, nil
}

// close releases the store when it holds resources. Injected stores are left open.
func (a *app) close() error {
	if a.deps.Store != nil {
		return nil
	}
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// setEventSink redirects loader events, e.g. into a running TUI.
func (a *app) setEventSink(fn func(fetcher.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEvent = fn
}

func (a *app) observe(e fetcher.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.onEvent != nil {
		a.onEvent(e)
	}
}

// printEvent writes interim and stale notices to stderr. Unavailable loads
// surface as command errors instead.
func (a *app) printEvent(e fetcher.Event) {
	switch e.Status {
	case fetcher.StatusRetrying:
		fmt.Fprintf(a.stderr, "%s: %s\n", e.List, e.Message())
	case fetcher.StatusStale:
		fmt.Fprintf(a.stderr, "Warning: %s: %s\n", e.List, e.Message())
	default:
	}
}

func (a *app) baseDir() string {
	return baseDirOf(a.deps)
}

func (a *app) isTTY() bool {
	if a.deps.IsTTY != nil {
		return a.deps.IsTTY()
	}
	return tui.IsTTY()
}

func (a *app) stdin() io.Reader {
	if a.deps.Stdin != nil {
		return a.deps.Stdin
	}
	return os.Stdin
}

func (a *app) policy(feed config.FeedConfig) fetcher.Policy {
	return fetcher.Policy{
		TTL:         a.cfg.FeedTTL(feed),
		MaxRetries:  a.cfg.Cache.MaxRetries,
		BackoffBase: a.cfg.Cache.BackoffBase.Duration(),
	}
}

func newFeedLoader[T any](
	a *app,
	name string,
	feed config.FeedConfig,
	validate func([]byte) error,
	empty func(T) bool,
) (*fetcher.Loader[T], error) {
	opts := []fetcher.Option{
		fetcher.WithSource(a.source),
		fetcher.WithGroup(a.group),
		fetcher.WithMetrics(a.metrics),
		fetcher.WithObserver(a.observe),
	}
	if a.deps.Sleeper != nil {
		opts = append(opts, fetcher.WithSleeper(a.deps.Sleeper))
	}
	if a.deps.Clock != nil {
		opts = append(opts, fetcher.WithClock(a.deps.Clock))
	}
	return fetcher.New(fetcher.Config[T]{
		Name:         name,
		URL:          feed.URL,
		DataKey:      feed.DataKey,
		TimestampKey: feed.TimestampKey,
		Policy:       a.policy(feed),
		Validate:     validate,
		Empty:        empty,
	}, a.store, opts...)
}

func (a *app) pluginsLoader() (*fetcher.Loader[[]catalog.Plugin], error) {
	return newFeedLoader(a, "plugins", a.cfg.Feeds.Plugins, catalog.ValidatePlugins, catalog.IsEmpty)
}

func (a *app) releasesLoader() (*fetcher.Loader[[]releases.AppRelease], error) {
	return newFeedLoader(a, "releases", a.cfg.Feeds.Releases, releases.ValidateReleases,
		fetcher.EmptySlice[releases.AppRelease])
}

func (a *app) trafficLoader() (*fetcher.Loader[traffic.Data], error) {
	return newFeedLoader(a, "traffic", a.cfg.Feeds.Traffic, traffic.Validate, traffic.IsEmpty)
}

// load runs l and turns an unavailable feed into an ExitError.
func load[T any](ctx context.Context, a *app, l *fetcher.Loader[T]) (*fetcher.Result[T], error) {
	res, err := l.Load(ctx, a.refresh)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, fetcher.ErrUnavailable) {
		return nil, &ExitError{
			Code: ExitCodeUnavailable,
			Err:  fmt.Errorf("unable to load %s (run again or use --refresh): %w", l.Name(), err),
		}
	}
	return nil, err
}

func (a *app) loadPlugins(ctx context.Context) (*fetcher.Result[[]catalog.Plugin], error) {
	l, err := a.pluginsLoader()
	if err != nil {
		return nil, err
	}
	return load(ctx, a, l)
}

func (a *app) loadReleases(ctx context.Context) (*fetcher.Result[[]releases.AppRelease], error) {
	l, err := a.releasesLoader()
	if err != nil {
		return nil, err
	}
	return load(ctx, a, l)
}

func (a *app) loadTraffic(ctx context.Context) (*fetcher.Result[traffic.Data], error) {
	l, err := a.trafficLoader()
	if err != nil {
		return nil, err
	}
	return load(ctx, a, l)
}

func (a *app) notesClient() *releases.NotesClient {
	return &releases.NotesClient{
		Fetcher:     a.github,
		BaseURL:     a.cfg.GitHub.NotesBaseURL,
		Dir:         a.cfg.GitHub.NotesDir,
		Development: a.cfg.IsDevelopment(),
	}
}

// writeMetrics exports the fetch metrics in the node exporter textfile format.
func (a *app) writeMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", a.metricsFile, err)
	}
	return nil
}
