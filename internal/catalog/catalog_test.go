package catalog

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) ([]Plugin, []byte) {
	t.Helper()
	raw, err := os.ReadFile("testdata/plugins.json")
	require.NoError(t, err)
	var plugins []Plugin
	require.NoError(t, json.Unmarshal(raw, &plugins))
	require.Len(t, plugins, 3)
	return plugins, raw
}

func names(plugins []Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Name
	}
	return out
}

func TestValidatePlugins(t *testing.T) {
	_, raw := loadFixture(t)
	require.NoError(t, ValidatePlugins(raw))

	tests := []struct {
		name string
		body string
	}{
		{"object instead of array", `{"name":"x"}`},
		{"missing repository", `[{"name":"x","version":"1","description":{"zh_tw":""},"author":[],"dependencies":{},"link":"","updated_at":""}]`},
		{"author not array", `[{"name":"x","version":"1","description":{"zh_tw":""},"author":"me","dependencies":{},"link":"","updated_at":"","repository":{"full_name":"a/b","releases":{"total_count":0,"total_downloads":0,"releases":[]}}}]`},
		{"not json", `[{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, ValidatePlugins([]byte(tt.body)))
		})
	}

	// An empty array is schema-valid; emptiness is rejected separately.
	require.NoError(t, ValidatePlugins([]byte(`[]`)))
	assert.True(t, IsEmpty(nil))
}

func TestSearch(t *testing.T) {
	plugins, _ := loadFixture(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"exptech", "tts", "Websocket"}},
		{"   ", []string{"exptech", "tts", "Websocket"}},
		{"websocket", []string{"Websocket"}},
		{"exptechtw", []string{"exptech", "Websocket"}},
		{"地震", []string{"tts"}},
		{"exptechtw 連線", []string{"Websocket"}},
		{"yayacat exptech", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Search(plugins, tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFind(t *testing.T) {
	plugins, _ := loadFixture(t)
	p, ok := Find(plugins, "tts")
	require.True(t, ok)
	assert.Equal(t, "1.0.3", p.Version)

	_, ok = Find(plugins, "TTS")
	assert.False(t, ok)
}

func TestSort(t *testing.T) {
	plugins, _ := loadFixture(t)

	tests := []struct {
		field SortField
		order SortOrder
		want  []string
	}{
		{SortByName, SortAsc, []string{"exptech", "tts", "Websocket"}},
		{SortByName, SortDesc, []string{"Websocket", "tts", "exptech"}},
		{SortByDownloads, SortDesc, []string{"Websocket", "exptech", "tts"}},
		{SortByDownloads, SortAsc, []string{"tts", "exptech", "Websocket"}},
		{SortByUpdated, SortDesc, []string{"exptech", "tts", "Websocket"}},
		{SortByUpdated, SortAsc, []string{"Websocket", "tts", "exptech"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field)+":"+string(tt.order), func(t *testing.T) {
			assert.Equal(t, tt.want, names(Sort(plugins, tt.field, tt.order)))
		})
	}

	// Input order is untouched.
	assert.Equal(t, []string{"exptech", "tts", "Websocket"}, names(plugins))
}

func TestParseSort(t *testing.T) {
	f, err := ParseSortField(" Downloads ")
	require.NoError(t, err)
	assert.Equal(t, SortByDownloads, f)

	_, err = ParseSortField("stars")
	require.Error(t, err)

	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, o)
	assert.Equal(t, SortAsc, o.Flip())

	_, err = ParseSortOrder("up")
	require.Error(t, err)

	assert.Equal(t, SortAsc, DefaultOrder(SortByName))
	assert.Equal(t, SortDesc, DefaultOrder(SortByUpdated))
	assert.Len(t, SortFields(), 3)
}

func TestComputeStats(t *testing.T) {
	plugins, _ := loadFixture(t)
	assert.Equal(t, Stats{Plugins: 3, Downloads: 18000, Authors: 3}, ComputeStats(plugins))
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestCheckDependencies(t *testing.T) {
	plugins, _ := loadFixture(t)
	ws, _ := Find(plugins, "Websocket")

	checks := CheckDependencies(plugins, ws)
	require.Len(t, checks, 3)

	assert.Equal(t, "exptech", checks[0].Name)
	assert.Equal(t, DependencyUnsatisfied, checks[0].State)
	assert.Equal(t, "2.1.0", checks[0].Available)

	assert.Equal(t, "missing-lib", checks[1].Name)
	assert.Equal(t, DependencyMissing, checks[1].State)

	assert.Equal(t, "tts", checks[2].Name)
	assert.Equal(t, DependencyInvalid, checks[2].State)
	assert.NotEmpty(t, checks[2].Detail)

	tts, _ := Find(plugins, "tts")
	ttsChecks := CheckDependencies(plugins, tts)
	require.Len(t, ttsChecks, 1)
	assert.Equal(t, DependencySatisfied, ttsChecks[0].State)
}

func TestDependents(t *testing.T) {
	plugins, _ := loadFixture(t)

	deps := Dependents(plugins, "exptech")
	require.Len(t, deps, 2)
	assert.Equal(t, "tts", deps[0].Plugin.Name)
	assert.Equal(t, ">=2.0.0", deps[0].Requires)
	assert.Equal(t, "Websocket", deps[1].Plugin.Name)

	assert.Empty(t, Dependents(plugins, "nobody"))
}

func TestParseVersionConstraint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"greater than or equal", ">=1.0.0", false},
		{"range", ">=1.0.0, <2.0.0", false},
		{"caret", "^1.2.3", false},
		{"bare version", "1.2.0", false},
		{"empty", "", true},
		{"invalid", "not-a-version", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVersionConstraint(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	c, err := ParseVersionConstraint("1.2.0")
	require.NoError(t, err)
	for version, want := range map[string]bool{"1.2.0": true, "v1.9.9": true, "1.1.9": false} {
		got, err := SatisfiesConstraint(version, c)
		require.NoError(t, err)
		assert.Equal(t, want, got, version)
	}
	_, err = SatisfiesConstraint("invalid", c)
	require.Error(t, err)
}

func TestChannelOf(t *testing.T) {
	tests := map[string]Channel{
		"v2.1.0":        ChannelStable,
		"v2.1.0-rc.1":   ChannelRC,
		"2.1.0-RC1":     ChannelRC,
		"v1.5.0-pre.2":  ChannelPre,
		"v0.9.0":        ChannelDev,
		"v0.9.0-rc.1":   ChannelDev,
		"0.5.0":         ChannelStable,
		"0.5.0-rc.2":    ChannelRC,
		"dev-20240101":  ChannelDev,
		"nightly":       ChannelStable,
		"build-pre-one": ChannelPre,
	}
	for tag, want := range tests {
		assert.Equal(t, want, ChannelOf(tag), tag)
	}

	assert.Equal(t, "穩定版", ChannelStable.Label())
	assert.Equal(t, "發布候選", ChannelRC.Label())
	assert.Equal(t, "預覽版", ChannelPre.Label())
	assert.NotEmpty(t, ChannelDev.Description())
}

func TestRecommendedRelease(t *testing.T) {
	rel := func(tags ...string) []Release {
		out := make([]Release, len(tags))
		for i, tag := range tags {
			out[i] = Release{TagName: tag}
		}
		return out
	}

	tests := []struct {
		name string
		in   []Release
		want string
	}{
		{"stable wins", rel("v2.0.0-rc.1", "v1.9.0", "v1.8.0"), "v1.9.0"},
		{"rc before pre", rel("v2.0.0-pre.1", "v2.0.0-rc.1"), "v2.0.0-rc.1"},
		{"pre before dev", rel("dev-1", "v2.0.0-pre.1"), "v2.0.0-pre.1"},
		{"first otherwise", rel("dev-2", "dev-1"), "dev-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecommendedRelease(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.TagName)
		})
	}

	_, ok := RecommendedRelease(nil)
	assert.False(t, ok)
}

func TestInstallURLs(t *testing.T) {
	plugins, _ := loadFixture(t)
	p, _ := Find(plugins, "tts")

	assert.Equal(t,
		"trem-lite://plugin/install:tts@https://github.com/yayacat/tts/releases/latest/download/tts.trem",
		InstallURL(p, "trem-lite", ""))
	assert.Equal(t,
		"trem-lite://plugin/install:tts@https://github.com/yayacat/tts/releases/download/v1.0.3/tts.trem",
		InstallURL(p, "trem-lite", "v1.0.3"))
	assert.Equal(t, "https://github.com/yayacat/tts", RepositoryURL(p))

	assert.False(t, IsVerified(p, "ExpTechTW"))
	ws, _ := Find(plugins, "Websocket")
	assert.True(t, IsVerified(ws, "exptechtw"))
}

func TestPluginAccessors(t *testing.T) {
	plugins, _ := loadFixture(t)

	latest, ok := plugins[0].LatestRelease()
	require.True(t, ok)
	assert.Equal(t, "v2.1.0", latest.TagName)

	_, ok = plugins[2].LastPublished()
	assert.False(t, ok, "null published_at")

	updated, ok := plugins[1].UpdatedTime()
	require.True(t, ok)
	assert.Equal(t, 2024, updated.Year())

	empty := Plugin{UpdatedAt: "soon"}
	_, ok = empty.LatestRelease()
	assert.False(t, ok)
	_, ok = empty.UpdatedTime()
	assert.False(t, ok)
}

func TestActivity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := func(s string) *time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return &ts
	}
	releases := []Release{
		{TagName: "a", PublishedAt: at("2024-04-30T10:00:00Z")},
		{TagName: "b", PublishedAt: at("2024-04-30T11:00:00Z")},
		{TagName: "c", PublishedAt: at("2024-04-30T09:00:00Z")},
		{TagName: "d", PublishedAt: at("2024-04-30T08:00:00Z")},
		{TagName: "e", PublishedAt: at("2024-04-15T08:00:00Z")},
		{TagName: "f", PublishedAt: at("2024-03-01T08:00:00Z")},
		{TagName: "g"},
	}

	days := Activity(releases, now)
	require.Len(t, days, 31)
	assert.Equal(t, "2024-04-01", days[0].Date)
	assert.Equal(t, "2024-05-01", days[len(days)-1].Date)

	byDate := make(map[string]ActivityDay, len(days))
	total := 0
	for _, d := range days {
		byDate[d.Date] = d
		total += d.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, ActivityDay{Date: "2024-04-30", Count: 4, Level: 4}, byDate["2024-04-30"])
	assert.Equal(t, ActivityDay{Date: "2024-04-15", Count: 1, Level: 2}, byDate["2024-04-15"])
	assert.Equal(t, 0, byDate["2024-04-16"].Level)
}
