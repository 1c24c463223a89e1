package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/exptechtw/tremstore/internal/logging"
	"github.com/exptechtw/tremstore/internal/store"
)

// Status is the outcome of a load, or an interim state while retrying.
type Status string

// Load statuses.
const (
	StatusFresh       Status = "fresh"
	StatusFetched     Status = "fetched"
	StatusRetrying    Status = "retrying"
	StatusStale       Status = "stale"
	StatusUnavailable Status = "unavailable"
)

// Messages attached to results and events.
const (
	MessageStale = "using cached data (may be out of date)"
)

// Event is sent to an Observer on every status change of a load.
type Event struct {
	List       string
	Status     Status
	Attempt    int
	MaxRetries int
	Err        error
}

// Message renders the event for humans, e.g. "load failed (1/3), retrying...".
func (e Event) Message() string {
	switch e.Status {
	case StatusRetrying:
		return fmt.Sprintf("load failed (%d/%d), retrying...", e.Attempt, e.MaxRetries)
	case StatusStale:
		return MessageStale
	case StatusUnavailable:
		return fmt.Sprintf("unable to load %s", e.List)
	default:
		return string(e.Status)
	}
}

// Observer receives load events. It may be called from another goroutine.
type Observer func(Event)

// Config describes one feed.
type Config[T any] struct {
	// Name labels logs and metrics ("plugins", "releases", "traffic").
	Name         string
	URL          string
	DataKey      string
	TimestampKey string
	Policy       Policy
	// Validate checks the raw body before decoding. Optional.
	Validate func(raw []byte) error
	// Empty reports a decoded value that must be treated as a failure. Optional.
	Empty func(T) bool
}

// Result is what a load produced.
type Result[T any] struct {
	Value     T
	Status    Status
	FetchedAt time.Time
	// Attempts counts network requests made by this load.
	Attempts int
	Message  string
}

// Option customises a Loader.
type Option func(*options)

type options struct {
	source   Source
	clock    Clock
	sleep    Sleeper
	group    *singleflight.Group
	metrics  *Metrics
	observer Observer
}

// WithSource replaces the HTTP source.
func WithSource(s Source) Option { return func(o *options) { o.source = s } }

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) Option { return func(o *options) { o.sleep = s } }

// WithGroup shares a coalescing group between loaders.
func WithGroup(g *singleflight.Group) Option { return func(o *options) { o.group = g } }

// WithMetrics records prometheus metrics.
func WithMetrics(m *Metrics) Option { return func(o *options) { o.metrics = m } }

// WithObserver receives status events.
func WithObserver(fn Observer) Option { return func(o *options) { o.observer = fn } }

// Loader loads one feed through the store.
type Loader[T any] struct {
	cfg   Config[T]
	store store.Store
	opts  options
}

// New validates cfg and builds a Loader.
func New[T any](cfg Config[T], st store.Store, opts ...Option) (*Loader[T], error) {
	switch {
	case st == nil:
		return nil, errors.New("fetcher: nil store")
	case cfg.URL == "":
		return nil, errors.New("fetcher: empty URL")
	case cfg.DataKey == "" || cfg.TimestampKey == "":
		return nil, errors.New("fetcher: empty store key")
	case cfg.DataKey == cfg.TimestampKey:
		return nil, errors.New("fetcher: data and timestamp keys must differ")
	case cfg.Policy.MaxRetries < 0:
		return nil, errors.New("fetcher: negative MaxRetries")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.DataKey
	}

	o := options{
		clock: SystemClock,
		sleep: Sleep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = NewHTTPSource()
	}
	if o.group == nil {
		o.group = &singleflight.Group{}
	}

	return &Loader[T]{cfg: cfg, store: st, opts: o}, nil
}

// Name returns the feed label.
func (l *Loader[T]) Name() string { return l.cfg.Name }

// Policy returns the feed policy.
func (l *Loader[T]) Policy() Policy { return l.cfg.Policy }

// Keys returns the feed's store keys.
func (l *Loader[T]) Keys() Keys {
	return Keys{Data: l.cfg.DataKey, Timestamp: l.cfg.TimestampKey}
}

// Peek returns the stored entry without any network activity.
func (l *Loader[T]) Peek(ctx context.Context) (*CacheEntry, bool, error) {
	return ReadEntry(ctx, l.store, l.Keys())
}

// Clear removes the feed's entry.
func (l *Loader[T]) Clear(ctx context.Context) error {
	return l.store.Clear(ctx, l.cfg.DataKey, l.cfg.TimestampKey)
}

// Load returns the feed, from the store when fresh and from the network otherwise.
// forceRefresh skips the freshness check but keeps the stale fallback.
//
// A stale fallback is a successful load: err is nil and Status is StatusStale.
// When nothing can be returned, Status is StatusUnavailable, Value is the zero
// value and err wraps ErrUnavailable. A cancelled ctx returns (nil, ctx.Err()).
func (l *Loader[T]) Load(ctx context.Context, forceRefresh bool) (*Result[T], error) {
	log := logging.FromContext(ctx).With().
		Str("component", "fetcher").
		Str("list", l.cfg.Name).
		Logger()

	if !forceRefresh {
		if res, ok := l.fromFreshCache(ctx); ok {
			log.Debug().Ctx(ctx).Str("operation", "load").Msg("cache hit")
			l.finish(res, nil)
			return res, nil
		}
	}

	for {
		ch := l.opts.group.DoChan(l.cfg.URL, func() (interface{}, error) {
			return l.fetchChain(ctx)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-ch:
			if r.Shared {
				log.Debug().Ctx(ctx).Str("operation", "load").Msg("joined in-flight fetch")
			}
			shared, _ := r.Val.(*Result[T])
			if shared == nil {
				// The in-flight fetch ran on another caller's context. If that
				// caller went away, start over with ours.
				if isContextErr(r.Err) && ctx.Err() == nil {
					log.Debug().Ctx(ctx).Str("operation", "load").Msg("in-flight fetch cancelled by its caller, fetching again")
					continue
				}
				return nil, r.Err
			}
			res := *shared
			return &res, r.Err
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (l *Loader[T]) fromFreshCache(ctx context.Context) (*Result[T], bool) {
	entry, ok, err := l.Peek(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "fetcher").Str("list", l.cfg.Name).
			Msg("reading cache failed, treating as empty")
		return nil, false
	}
	if !ok || !entry.IsFresh(l.opts.clock.Now(), l.cfg.Policy.TTL) {
		return nil, false
	}
	value, err := l.decode(entry.Payload)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "fetcher").Str("list", l.cfg.Name).
			Msg("cached payload unreadable, refetching")
		return nil, false
	}
	return &Result[T]{Value: value, Status: StatusFresh, FetchedAt: entry.FetchedAt}, true
}

// fetchChain runs the attempt/backoff loop and the terminal fallback.
func (l *Loader[T]) fetchChain(ctx context.Context) (*Result[T], error) {
	log := logging.FromContext(ctx).With().
		Str("component", "fetcher").
		Str("list", l.cfg.Name).
		Str("url", l.cfg.URL).
		Logger()
	maxRetries := l.cfg.Policy.MaxRetries

	var lastErr error
	attempts := 0
	for attempt := 0; ; attempt++ {
		attempts++
		value, err := l.fetchOnce(ctx)
		if err == nil {
			return l.saveFetched(ctx, value, attempts)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug().Ctx(ctx).Err(err).Int("attempt", attempts).Msg("fetch cancelled")
			return nil, ctxErr
		}

		lastErr = err
		if attempt >= maxRetries {
			break
		}

		delay := l.cfg.Policy.Backoff(attempt)
		log.Warn().Ctx(ctx).Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("backoff", delay).
			Msg("fetch failed, retrying")
		l.notify(Event{List: l.cfg.Name, Status: StatusRetrying, Attempt: attempt + 1, MaxRetries: maxRetries, Err: err})

		if err = l.opts.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return l.fallback(ctx, attempts, lastErr)
}

// saveFetched persists a fetched value and builds the fetched result.
// A store failure is logged; the fetched value is still returned.
func (l *Loader[T]) saveFetched(ctx context.Context, value T, attempts int) (*Result[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := l.opts.clock.Now()
	res := &Result[T]{Value: value, Status: StatusFetched, FetchedAt: now, Attempts: attempts}

	payload, err := json.Marshal(value)
	if err == nil {
		err = WriteEntry(ctx, l.store, l.Keys(), CacheEntry{Payload: payload, FetchedAt: now})
	}
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Str("component", "fetcher").Str("list", l.cfg.Name).
			Msg("caching fetched data failed")
	}

	l.finish(res, nil)
	return res, nil
}

func (l *Loader[T]) fallback(ctx context.Context, attempts int, lastErr error) (*Result[T], error) {
	log := logging.FromContext(ctx)

	entry, ok, err := l.Peek(ctx)
	if err == nil && ok {
		value, decErr := l.decode(entry.Payload)
		if decErr == nil {
			log.Warn().Ctx(ctx).Err(lastErr).
				Str("component", "fetcher").Str("list", l.cfg.Name).
				Time("fetched_at", entry.FetchedAt).
				Msg("retries exhausted, serving cached data")
			res := &Result[T]{
				Value:     value,
				Status:    StatusStale,
				FetchedAt: entry.FetchedAt,
				Attempts:  attempts,
				Message:   MessageStale,
			}
			l.finish(res, lastErr)
			return res, nil
		}
		err = decErr
	}
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).
			Str("component", "fetcher").Str("list", l.cfg.Name).
			Msg("cached data unusable")
	}

	var zero T
	res := &Result[T]{
		Value:    zero,
		Status:   StatusUnavailable,
		Attempts: attempts,
		Message:  Event{List: l.cfg.Name, Status: StatusUnavailable}.Message(),
	}
	log.Error().Ctx(ctx).Err(lastErr).
		Str("component", "fetcher").Str("list", l.cfg.Name).
		Int("attempts", attempts).
		Msg("retries exhausted, nothing cached")
	l.finish(res, lastErr)
	return res, fmt.Errorf("%w: %s: %w", ErrUnavailable, l.cfg.Name, lastErr)
}

// fetchOnce performs one network attempt and decodes the body.
func (l *Loader[T]) fetchOnce(ctx context.Context) (T, error) {
	start := l.opts.clock.Now()
	raw, err := l.opts.source.Fetch(ctx, l.cfg.URL)
	elapsed := l.opts.clock.Now().Sub(start)
	if err != nil {
		l.opts.metrics.observeAttempt(l.cfg.Name, resultError, elapsed)
		var zero T
		return zero, err
	}

	value, err := l.decode(raw)
	if err != nil {
		l.opts.metrics.observeAttempt(l.cfg.Name, resultMalformed, elapsed)
		return value, err
	}
	l.opts.metrics.observeAttempt(l.cfg.Name, resultSuccess, elapsed)
	return value, nil
}

func (l *Loader[T]) decode(raw []byte) (T, error) {
	var value T
	if !json.Valid(raw) {
		return value, fmt.Errorf("%w: not valid JSON", ErrMalformedPayload)
	}
	if l.cfg.Validate != nil {
		if err := l.cfg.Validate(raw); err != nil {
			return value, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if l.cfg.Empty != nil && l.cfg.Empty(value) {
		return value, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}
	return value, nil
}

func (l *Loader[T]) finish(res *Result[T], err error) {
	l.opts.metrics.observeLoad(l.cfg.Name, res.Status)
	l.notify(Event{
		List:       l.cfg.Name,
		Status:     res.Status,
		Attempt:    res.Attempts,
		MaxRetries: l.cfg.Policy.MaxRetries,
		Err:        err,
	})
}

func (l *Loader[T]) notify(e Event) {
	if l.opts.observer != nil {
		l.opts.observer(e)
	}
}

// EmptySlice is an Empty func for list feeds.
func EmptySlice[E any](v []E) bool {
	return len(v) == 0
}
