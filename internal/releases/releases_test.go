package releases

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) ([]AppRelease, []byte) {
	t.Helper()
	raw, err := os.ReadFile("testdata/releases.json")
	require.NoError(t, err)
	var out []AppRelease
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, raw
}

func TestValidateReleases(t *testing.T) {
	_, raw := loadFixture(t)
	require.NoError(t, ValidateReleases(raw))
	require.Error(t, ValidateReleases([]byte(`[{"assets":[]}]`)))
	require.Error(t, ValidateReleases([]byte(`{"message":"API rate limit exceeded"}`)))
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Platform
		label        string
		suffix       string
	}{
		{"darwin", "arm64", Platform{OSMac, ArchARM64}, "macOS (Apple Silicon)", "arm64.dmg"},
		{"darwin", "amd64", Platform{OSMac, ArchX64}, "macOS (Intel)", "x64.dmg"},
		{"windows", "amd64", Platform{OSWindows, ArchX64}, "Windows (X64)", "x64.exe"},
		{"windows", "386", Platform{OSWindows, ArchI32}, "Windows (x86)", "ia32.exe"},
		{"windows", "arm64", Platform{OSWindows, ArchARM64}, "未知系統", "x64.exe"},
		{"linux", "amd64", Platform{OSLinux, ArchX64}, "Linux (amd64)", "amd64.deb"},
		{"linux", "arm64", Platform{OSLinux, ArchARM64}, "Linux (arm64)", "arm64.deb"},
		{"linux", "riscv64", Platform{OSLinux, ArchUnknown}, "未知系統", ""},
		{"freebsd", "amd64", Platform{OSUnknown, ArchUnknown}, "未知系統", ""},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			p := DetectPlatform(tt.goos, tt.goarch)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.label, p.Label())
			assert.Equal(t, tt.suffix, p.AssetSuffix())
		})
	}
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, Platform{OSMac, ArchARM64}, ParsePlatform("mac/arm64"))
	assert.Equal(t, "linux/x64", ParsePlatform("linux/x64").String())
	assert.Equal(t, Platform{OSUnknown, ArchUnknown}, ParsePlatform("amiga/m68k"))
	assert.Len(t, SupportedPlatforms(), 6)
}

func TestDownloadLink(t *testing.T) {
	rels, _ := loadFixture(t)
	r, ok := FindRelease(rels, "v2.0.0")
	require.True(t, ok)

	link, ok := DownloadLink(r, Platform{OSLinux, ArchX64})
	require.True(t, ok)
	assert.Equal(t, "https://dl.example/2.0.0/amd64.deb", link.URL)
	assert.Equal(t, "75.0 MB", link.Size)

	// x64.exe must not match the ia32 installer and vice versa.
	link, ok = DownloadLink(r, Platform{OSWindows, ArchI32})
	require.True(t, ok)
	assert.Equal(t, "TREM-Lite-2.0.0-ia32.exe", link.Asset)

	_, ok = DownloadLink(rels[2], Platform{OSMac, ArchARM64})
	assert.False(t, ok)
	_, ok = DownloadLink(r, Platform{OSUnknown, ArchUnknown})
	assert.False(t, ok)
	_, ok = FindRelease(rels, "v9")
	assert.False(t, ok)
}

func TestSelectVersion(t *testing.T) {
	rels, _ := loadFixture(t)

	assert.Equal(t, "v2.0.0", SelectVersion(rels, ""))
	assert.Equal(t, "v1.9.0", SelectVersion(rels, "1.9"))
	assert.Equal(t, "v2.1.0-rc.1", SelectVersion(rels, "rc"))
	assert.Equal(t, "v2.0.0", SelectVersion(rels, "nope"))
	assert.Equal(t, "v3-rc", SelectVersion([]AppRelease{{TagName: "v3-rc"}}, ""))
	assert.Empty(t, SelectVersion(nil, ""))
}

func TestDownloadStatsAndSizes(t *testing.T) {
	rels, _ := loadFixture(t)

	assert.Equal(t, DownloadStats{Total: 1540, Version: 630}, ComputeDownloadStats(rels, "v2.0.0"))
	assert.Equal(t, DownloadStats{Total: 1540}, ComputeDownloadStats(rels, "missing"))

	series := SizeSeries(rels)
	require.Len(t, series, 3)
	assert.Equal(t, "v1.9.0", series[0].Version)
	assert.Equal(t, "v2.1.0-rc.1", series[2].Version)
	assert.Equal(t, map[string]float64{"Windows x64": 80}, series[0].Sizes)
	assert.Len(t, series[1].Sizes, 6)
	assert.InDelta(t, 85.0, series[1].Sizes["Windows ia32"], 0.001)
	assert.Len(t, SizeSeriesNames(), 6)
}

func TestRecent(t *testing.T) {
	rels, _ := loadFixture(t)
	assert.Len(t, Recent(rels, 2), 2)
	assert.Len(t, Recent(rels, MaxReleases), 3)
	assert.Len(t, Recent(rels, -1), 3)
}

type fakeRaw struct {
	body []byte
	err  error
	url  string
}

func (f *fakeRaw) Raw(_ context.Context, url string) ([]byte, error) {
	f.url = url
	return f.body, f.err
}

func TestNotesClient(t *testing.T) {
	ctx := context.Background()

	t.Run("production", func(t *testing.T) {
		raw := &fakeRaw{body: []byte(":star2: 新功能 :unknown: :MacOS:")}
		c := &NotesClient{Fetcher: raw, BaseURL: "https://raw.example/releases/"}

		n, err := c.Get(ctx, "v2.0.0")
		require.NoError(t, err)
		assert.True(t, n.Found)
		assert.Equal(t, "https://raw.example/releases/2.0.0.md", raw.url)
		assert.Equal(t, "⭐ 新功能 :unknown: [macOS]", n.Text)
	})

	t.Run("missing", func(t *testing.T) {
		c := &NotesClient{Fetcher: &fakeRaw{err: errors.New("404")}, BaseURL: "https://raw.example"}
		n, err := c.Get(ctx, "v1.0.0")
		require.NoError(t, err)
		assert.False(t, n.Found)
		assert.Equal(t, NoNotesText, n.Text)
	})

	t.Run("development", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "2.0.0.md"), []byte(":tools: fix"), 0o600))
		c := &NotesClient{Dir: dir, Development: true}

		n, err := c.Get(ctx, "v2.0.0")
		require.NoError(t, err)
		assert.Equal(t, "🛠️ fix", n.Text)

		n, err = c.Get(ctx, "v9.9.9")
		require.NoError(t, err)
		assert.False(t, n.Found)
	})

	t.Run("empty version", func(t *testing.T) {
		_, err := (&NotesClient{}).Get(ctx, " v")
		require.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		c := &NotesClient{Fetcher: &fakeRaw{err: context.Canceled}}
		_, err := c.Get(cctx, "v1")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestConvertEmoji(t *testing.T) {
	in := ":green_square: :electric_plug: :lady_beetle: :warning: :Windows: :not_mapped:"
	assert.Equal(t, "🟩 🔌 🐞 ⚠️ [Windows] :not_mapped:", ConvertEmoji(in))
}
