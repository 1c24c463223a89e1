package catalog

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Channel classifies a release tag.
type Channel string

// Release channels.
const (
	ChannelStable Channel = "stable"
	ChannelRC     Channel = "rc"
	ChannelPre    Channel = "pre"
	ChannelDev    Channel = "dev"
)

// ChannelOf classifies tag. Tags starting with "dev" or containing "v0." are dev;
// a bare "0.x" tag is not. Semver tags are classified by their pre-release
// part, others by substring.
func ChannelOf(tag string) Channel {
	t := strings.ToLower(tag)
	if strings.HasPrefix(t, "dev") || strings.Contains(t, "v0.") {
		return ChannelDev
	}
	if v, err := semver.NewVersion(t); err == nil {
		pre := v.Prerelease()
		switch {
		case strings.HasPrefix(pre, "pre"):
			return ChannelPre
		case strings.HasPrefix(pre, "rc"):
			return ChannelRC
		case pre == "":
			return ChannelStable
		}
	}
	switch {
	case strings.Contains(t, "-pre"):
		return ChannelPre
	case strings.Contains(t, "-rc"):
		return ChannelRC
	default:
		return ChannelStable
	}
}

// Label returns the localised channel name shown in the catalog.
func (c Channel) Label() string {
	switch c {
	case ChannelStable:
		return "穩定版"
	case ChannelRC:
		return "發布候選"
	case ChannelPre:
		return "預覽版"
	case ChannelDev:
		return "開發版"
	default:
		return string(c)
	}
}

// Description explains the channel to users.
func (c Channel) Description() string {
	switch c {
	case ChannelStable:
		return "穩定版本，建議一般用戶使用。"
	case ChannelRC:
		return "候選發布版本，即將正式發布。"
	case ChannelPre:
		return "預覽版本，功能尚未完整測試。"
	case ChannelDev:
		return "開發版本，可能不穩定且包含錯誤。"
	default:
		return ""
	}
}

// isStableTag excludes pre, rc and dev-prefixed tags.
func isStableTag(tag string) bool {
	t := strings.ToLower(tag)
	return !strings.Contains(t, "-pre") && !strings.Contains(t, "-rc") && !strings.HasPrefix(t, "dev")
}

// RecommendedRelease picks the first stable release, else the first rc,
// else the first pre-release, else the first release.
func RecommendedRelease(releases []Release) (Release, bool) {
	if len(releases) == 0 {
		return Release{}, false
	}
	for _, r := range releases {
		if isStableTag(r.TagName) {
			return r, true
		}
	}
	for _, r := range releases {
		if strings.Contains(strings.ToLower(r.TagName), "-rc") {
			return r, true
		}
	}
	for _, r := range releases {
		if strings.Contains(strings.ToLower(r.TagName), "-pre") {
			return r, true
		}
	}
	return releases[0], true
}
