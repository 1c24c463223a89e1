package releases

import (
	"strings"

	"github.com/exptechtw/tremstore/internal/display"
)

// Link is a resolved installer download.
type Link struct {
	URL   string `json:"url"`
	Asset string `json:"asset"`
	Bytes int64  `json:"bytes"`
	Size  string `json:"size"`
}

// DownloadLink finds the installer for platform in release.
func DownloadLink(release AppRelease, platform Platform) (Link, bool) {
	suffix := platform.AssetSuffix()
	if suffix == "" {
		return Link{}, false
	}
	for _, a := range release.Assets {
		if strings.HasSuffix(a.Name, suffix) {
			return Link{
				URL:   a.BrowserDownloadURL,
				Asset: a.Name,
				Bytes: a.Size,
				Size:  display.FileSize(a.Size),
			}, true
		}
	}
	return Link{}, false
}

// FindRelease returns the release tagged exactly tag.
func FindRelease(releases []AppRelease, tag string) (AppRelease, bool) {
	for _, r := range releases {
		if r.TagName == tag {
			return r, true
		}
	}
	return AppRelease{}, false
}

// SelectVersion picks the tag to show: the first tag containing requested,
// else the first stable tag, else the first tag. Empty when there are no releases.
func SelectVersion(releases []AppRelease, requested string) string {
	if requested != "" {
		for _, r := range releases {
			if strings.Contains(r.TagName, requested) {
				return r.TagName
			}
		}
	}
	for _, r := range releases {
		if !strings.Contains(r.TagName, "-rc") && !strings.Contains(r.TagName, "-pre") {
			return r.TagName
		}
	}
	if len(releases) > 0 {
		return releases[0].TagName
	}
	return ""
}

// DownloadStats totals downloads across releases and for one version.
type DownloadStats struct {
	Total   int `json:"total"`
	Version int `json:"version"`
}

// ComputeDownloadStats sums asset downloads overall and for tag.
func ComputeDownloadStats(releases []AppRelease, tag string) DownloadStats {
	var s DownloadStats
	for _, r := range releases {
		n := r.Downloads()
		s.Total += n
		if r.TagName == tag {
			s.Version = n
		}
	}
	return s
}

// SizePoint is the installer sizes (MB) of one version keyed by platform label.
type SizePoint struct {
	Version string             `json:"version"`
	Sizes   map[string]float64 `json:"sizes"`
}

// sizeSeriesSuffixes maps installer suffixes to series names, most specific first.
//
//nolint:gochecknoglobals // Lookup table.
var sizeSeriesSuffixes = []struct {
	suffix string
	series string
}{
	{"amd64.deb", "Linux amd64"},
	{"arm64.deb", "Linux arm64"},
	{"arm64.dmg", "macOS arm64"},
	{"x64.dmg", "macOS x64"},
	{"ia32.exe", "Windows ia32"},
	{"x64.exe", "Windows x64"},
}

// SizeSeriesNames lists the series SizeSeries may produce, in display order.
func SizeSeriesNames() []string {
	out := make([]string, len(sizeSeriesSuffixes))
	for i, s := range sizeSeriesSuffixes {
		out[i] = s.series
	}
	return out
}

// SizeSeries returns installer sizes per version, oldest first.
func SizeSeries(releases []AppRelease) []SizePoint {
	out := make([]SizePoint, 0, len(releases))
	for i := len(releases) - 1; i >= 0; i-- {
		r := releases[i]
		p := SizePoint{Version: r.TagName, Sizes: make(map[string]float64)}
		for _, a := range r.Assets {
			for _, s := range sizeSeriesSuffixes {
				if strings.HasSuffix(a.Name, s.suffix) {
					p.Sizes[s.series] = display.MegabytesRounded(a.Size)
					break
				}
			}
		}
		out = append(out, p)
	}
	return out
}
