package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/exptechtw/tremstore/internal/cli"
	"github.com/exptechtw/tremstore/internal/config"
	"github.com/exptechtw/tremstore/internal/store"
)

var errOffline = errors.New("dial tcp: network is unreachable")

// fakeSource serves canned bodies per URL and counts requests.
type fakeSource struct {
	mu     sync.Mutex
	bodies map[string][]byte
	fail   bool
	calls  map[string]int
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	read := func(name string) []byte {
		raw, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		return raw
	}
	return &fakeSource{
		bodies: map[string][]byte{
			config.DefaultPluginsURL:  read("plugins.json"),
			config.DefaultReleasesURL: read("releases.json"),
			config.DefaultTrafficURL:  read("traffic.json"),
		},
		calls: make(map[string]int),
	}
}

func (s *fakeSource) Fetch(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[url]++
	if s.fail {
		return nil, errOffline
	}
	body, ok := s.bodies[url]
	if !ok {
		return nil, errors.New("unexpected url " + url)
	}
	return body, nil
}

func (s *fakeSource) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *fakeSource) count(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// harness runs commands against shared fakes, so the cache survives between runs.
type harness struct {
	t      *testing.T
	deps   cli.Deps
	source *fakeSource
	clock  *fakeClock
	mu     sync.Mutex
	sleeps []time.Duration
	opened []string
	tty    bool
	stdin  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvCacheTTL, "")
	t.Setenv(config.EnvConfigPath, "")

	h := &harness{
		t:      t,
		source: newFakeSource(t),
		clock:  &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.deps = cli.Deps{
		BaseDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
		Store:      store.NewMemoryStore(),
		Source:     h.source,
		Clock:      h.clock,
		Sleeper: func(_ context.Context, d time.Duration) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.sleeps = append(h.sleeps, d)
			return nil
		},
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		IsTTY: func() bool { return h.tty },
	}
	return h
}

// run executes args and returns stdout, stderr and the error.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	deps := h.deps
	deps.Stdin = bytes.NewBufferString(h.stdin)

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmdWithDeps("test", deps)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
