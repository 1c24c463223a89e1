package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exptechtw/tremstore/internal/cli"
	"github.com/exptechtw/tremstore/internal/config"
)

const ttsInstallURL = "trem-lite://plugin/install:tts@https://github.com/yayacat/tts/releases/latest/download/tts.trem"

func TestPluginsList_Table(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("plugins", "list")
	require.NoError(t, err)

	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "exptech ✓")
	assert.Contains(t, stdout, "5.2K")
	iExptech := strings.Index(stdout, "exptech")
	iTTS := strings.Index(stdout, "tts")
	iWebsocket := strings.Index(stdout, "Websocket")
	assert.Less(t, iExptech, iTTS, "name sort is case-insensitive")
	assert.Less(t, iTTS, iWebsocket)
}

func TestPluginsList_NoMatch(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("plugins", "list", "nothing-like-this")
	require.NoError(t, err)
	assert.Equal(t, "No plugins match \"nothing-like-this\".\n", stdout)
}

func TestPluginsList_JSONSearchSortAndPagination(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("-o", "json", "plugins", "list", "exptech", "--sort", "downloads", "--limit", "1")
	require.NoError(t, err)

	var doc struct {
		Status  string `json:"status"`
		Plugins []struct {
			Name     string `json:"name"`
			Verified bool   `json:"verified"`
			Channel  string `json:"channel"`
		} `json:"plugins"`
		Pagination struct {
			TotalItems int  `json:"total_items"`
			HasNext    bool `json:"has_next"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	assert.Equal(t, "fetched", doc.Status)
	require.Len(t, doc.Plugins, 1)
	assert.Equal(t, "Websocket", doc.Plugins[0].Name)
	assert.True(t, doc.Plugins[0].Verified)
	assert.Equal(t, "pre", doc.Plugins[0].Channel)
	assert.Equal(t, 2, doc.Pagination.TotalItems)
	assert.True(t, doc.Pagination.HasNext)
}

func TestPluginsList_NDJSONVerifiedOnly(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("-o", "ndjson", "plugins", "list", "--verified", "--sort", "name:desc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"name":"Websocket"`)
	assert.Contains(t, lines[1], `"name":"exptech"`)
}

func TestPluginsList_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown sort field", []string{"plugins", "list", "--sort", "stars"}},
		{"bad sort order", []string{"plugins", "list", "--sort", "name:up"}},
		{"mixed pagination", []string{"plugins", "list", "--limit", "2", "--page", "1", "--page-size", "2"}},
		{"unknown output", []string{"-o", "yaml", "plugins", "list"}},
		{"bad cache ttl", []string{"--cache-ttl", "soon", "plugins", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, _, err := h.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitCodeUsage, cli.ExitCode(err))
		})
	}
}

func TestPluginsShow(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("plugins", "show", "exptech")
	require.NoError(t, err)

	assert.Contains(t, stdout, "exptech 2.1.0")
	assert.Contains(t, stdout, "ExpTechTW, whes1015 (verified)")
	assert.Contains(t, stdout, "https://github.com/ExpTechTW/exptech")
	assert.Contains(t, stdout, "Recommended:")
	assert.Contains(t, stdout, "v2.1.0 [穩定版]")
	assert.Contains(t, stdout, "Required by:\n  tts (>=2.0.0)")
	assert.Contains(t, stdout, "Activity (last month):")
}

func TestPluginsShow_NotFound(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("plugins", "show", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `plugin "nope" not found`)
	assert.Equal(t, cli.ExitCodeError, cli.ExitCode(err))
}

func TestPluginsDeps_JSON(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("-o", "json", "plugins", "deps", "Websocket")
	require.NoError(t, err)

	var doc struct {
		Dependencies []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	states := make(map[string]string)
	for _, d := range doc.Dependencies {
		states[d.Name] = d.State
	}
	assert.Equal(t, map[string]string{
		"exptech":     "unsatisfied",
		"missing-lib": "missing",
		"tts":         "invalid",
	}, states)
}

func TestPluginsDeps_Table(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("plugins", "deps", "exptech")
	require.NoError(t, err)
	assert.Contains(t, stdout, "exptech has no dependencies.")
	assert.Contains(t, stdout, "Required by:\n  tts (>=2.0.0)")
}

func TestPluginsInstall_PrintsLinks(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("plugins", "install", "tts")
	require.NoError(t, err)

	assert.Contains(t, stdout, "tts (latest)")
	assert.Contains(t, stdout, "https://github.com/yayacat/tts/releases/latest/download/tts.trem")
	assert.Contains(t, stdout, ttsInstallURL)
	assert.Empty(t, h.opened)
}

func TestPluginsInstall_SpecificVersion(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("-o", "json", "plugins", "install", "tts", "--version", "v1.0.3")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "v1.0.3", out["version"])
	assert.Equal(t, "https://github.com/yayacat/tts/releases/download/v1.0.3/tts.trem", out["download_url"])

	_, _, err = h.run("plugins", "install", "tts", "--version", "v9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `has no release "v9.9.9"`)
}

func TestPluginsInstall_Open(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		tty        bool
		stdin      string
		wantOpened bool
		wantCode   int
		wantStderr string
	}{
		{
			name:       "yes skips the prompt",
			args:       []string{"--open", "--yes"},
			wantOpened: true,
		},
		{
			name:     "no tty without yes",
			args:     []string{"--open"},
			wantCode: cli.ExitCodeUsage,
		},
		{
			name:       "confirmed",
			args:       []string{"--open"},
			tty:        true,
			stdin:      "y\n",
			wantOpened: true,
			wantStderr: "? Install tts (latest) in TREM-Lite? [y/N]",
		},
		{
			name:       "declined",
			args:       []string{"--open"},
			tty:        true,
			stdin:      "\n",
			wantStderr: "Installation cancelled.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.tty = tt.tty
			h.stdin = tt.stdin

			_, stderr, err := h.run(append([]string{"plugins", "install", "tts"}, tt.args...)...)
			assert.Equal(t, tt.wantCode, cli.ExitCode(err))
			if tt.wantOpened {
				assert.Equal(t, []string{ttsInstallURL}, h.opened)
			} else {
				assert.Empty(t, h.opened)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}
			if tt.tty {
				assert.Contains(t, stderr, "Warning: tts is not published by "+config.DefaultVerifiedAuthor)
			}
		})
	}
}
