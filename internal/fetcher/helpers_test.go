package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/exptechtw/tremstore/internal/store"
)

type item struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSleeper records requested delays and returns immediately.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// feedServer serves a scripted sequence of responses and counts calls.
type feedServer struct {
	*httptest.Server

	calls atomic.Int32
	mu    sync.Mutex
	steps []step
}

type step struct {
	status int
	body   string
}

func newFeedServer(t *testing.T, steps ...step) *feedServer {
	t.Helper()
	fs := &feedServer{steps: steps}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(fs.calls.Add(1)) - 1
		fs.mu.Lock()
		s := fs.steps[len(fs.steps)-1]
		if n < len(fs.steps) {
			s = fs.steps[n]
		}
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) Calls() int { return int(fs.calls.Load()) }

type harness struct {
	store   *store.MemoryStore
	clock   *fakeClock
	sleeper *recordingSleeper
	events  *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Observe(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) Statuses() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Status, len(l.events))
	for i, e := range l.events {
		out[i] = e.Status
	}
	return out
}

func newHarness() *harness {
	return &harness{
		store:   store.NewMemoryStore(),
		clock:   newFakeClock(),
		sleeper: &recordingSleeper{},
		events:  &eventLog{},
	}
}

func (h *harness) loader(t *testing.T, url string, ttl time.Duration, opts ...Option) *Loader[[]item] {
	t.Helper()
	cfg := Config[[]item]{
		Name:         "plugins",
		URL:          url,
		DataKey:      "tremPlugins",
		TimestampKey: "lastPluginsFetch",
		Policy:       Policy{TTL: ttl, MaxRetries: 3, BackoffBase: time.Second},
		Empty:        EmptySlice[item],
	}
	base := []Option{
		WithClock(h.clock),
		WithSleeper(h.sleeper.Sleep),
		WithObserver(h.events.Observe),
	}
	l, err := New(cfg, h.store, append(base, opts...)...)
	require.NoError(t, err)
	return l
}

func (h *harness) seed(t *testing.T, payload string, age time.Duration) {
	t.Helper()
	err := WriteEntry(context.Background(), h.store, Keys{Data: "tremPlugins", Timestamp: "lastPluginsFetch"},
		CacheEntry{Payload: []byte(payload), FetchedAt: h.clock.Now().Add(-age)})
	require.NoError(t, err)
}
