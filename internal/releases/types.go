package releases

import (
	_ "embed"
	"time"

	"github.com/exptechtw/tremstore/internal/schema"
)

// MaxReleases is how many of the newest releases are shown.
const MaxReleases = 5

// AppRelease is one GitHub release of the desktop app.
type AppRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset is one downloadable file of a release.
type Asset struct {
	Name               string    `json:"name"`
	Size               int64     `json:"size"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	CreatedAt          time.Time `json:"created_at"`
	DownloadCount      int       `json:"download_count"`
}

// Downloads sums the asset download counts of r.
func (r *AppRelease) Downloads() int {
	total := 0
	for _, a := range r.Assets {
		total += a.DownloadCount
	}
	return total
}

//go:embed schema/releases.schema.json
var releasesSchemaJSON []byte

//nolint:gochecknoglobals // Compiled lazily, shared by every loader.
var releasesValidator = schema.New("https://tremstore.exptech.dev/schemas/releases.schema.json", releasesSchemaJSON)

// ValidateReleases checks a raw releases body against the embedded schema.
func ValidateReleases(raw []byte) error {
	return releasesValidator.Validate(raw)
}

// Recent returns at most n releases from the front of the feed.
func Recent(releases []AppRelease, n int) []AppRelease {
	if n < 0 || len(releases) <= n {
		return releases
	}
	return releases[:n]
}
