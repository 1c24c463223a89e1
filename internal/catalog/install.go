package catalog

import (
	"fmt"
	"strings"
)

const githubBase = "https://github.com"

// IsVerified reports whether the official author is among p's authors.
func IsVerified(p Plugin, verifiedAuthor string) bool {
	for _, a := range p.Author {
		if strings.EqualFold(a, verifiedAuthor) {
			return true
		}
	}
	return false
}

// LatestDownloadURL is the .trem asset of the repository's latest release.
func LatestDownloadURL(p Plugin) string {
	return fmt.Sprintf("%s/%s/releases/latest/download/%s.trem", githubBase, p.Repository.FullName, p.Name)
}

// DownloadURL is the .trem asset of a specific release tag.
func DownloadURL(p Plugin, tag string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s.trem", githubBase, p.Repository.FullName, tag, p.Name)
}

// InstallURL is the deep link handled by the desktop app:
// <scheme>://plugin/install:<name>@<download url>. An empty tag installs the latest release.
func InstallURL(p Plugin, scheme, tag string) string {
	download := LatestDownloadURL(p)
	if tag != "" {
		download = DownloadURL(p, tag)
	}
	return fmt.Sprintf("%s://plugin/install:%s@%s", scheme, p.Name, download)
}

// RepositoryURL is the plugin's GitHub page.
func RepositoryURL(p Plugin) string {
	return githubBase + "/" + p.Repository.FullName
}
