package catalog

import "time"

// Plugin is one entry of the plugin catalog feed.
type Plugin struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  Description       `json:"description"`
	Author       []string          `json:"author"`
	Dependencies map[string]string `json:"dependencies"`
	Link         string            `json:"link"`
	Repository   Repository        `json:"repository"`
	UpdatedAt    string            `json:"updated_at"`
}

// Description holds localised descriptions.
type Description struct {
	ZhTW string `json:"zh_tw"`
}

// Repository summarises the plugin's GitHub repository.
type Repository struct {
	FullName string         `json:"full_name"`
	Releases ReleaseSummary `json:"releases"`
}

// ReleaseSummary aggregates the repository's releases, newest first.
type ReleaseSummary struct {
	TotalCount     int       `json:"total_count"`
	TotalDownloads int       `json:"total_downloads"`
	Releases       []Release `json:"releases"`
}

// Release is one plugin release.
type Release struct {
	TagName     string     `json:"tag_name"`
	Name        string     `json:"name"`
	Downloads   int        `json:"downloads"`
	PublishedAt *time.Time `json:"published_at"`
}

// LatestRelease returns the first (newest) release.
func (p *Plugin) LatestRelease() (Release, bool) {
	if len(p.Repository.Releases.Releases) == 0 {
		return Release{}, false
	}
	return p.Repository.Releases.Releases[0], true
}

// LastPublished returns the publish time of the newest release, if known.
func (p *Plugin) LastPublished() (time.Time, bool) {
	r, ok := p.LatestRelease()
	if !ok || r.PublishedAt == nil {
		return time.Time{}, false
	}
	return *r.PublishedAt, true
}

// UpdatedTime parses UpdatedAt. Unparsable values report false.
func (p *Plugin) UpdatedTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, p.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Downloads returns the repository's total downloads.
func (p *Plugin) Downloads() int {
	return p.Repository.Releases.TotalDownloads
}

// IsEmpty reports an empty catalog. Empty feeds are rejected by the fetcher.
func IsEmpty(plugins []Plugin) bool {
	return len(plugins) == 0
}
