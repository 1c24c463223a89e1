package releases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/exptechtw/tremstore/internal/logging"
)

// NoNotesText is shown when a version has no release notes.
const NoNotesText = "此版本無更新日誌。"

// RawFetcher fetches raw file contents by URL.
type RawFetcher interface {
	Raw(ctx context.Context, url string) ([]byte, error)
}

// NotesClient loads release notes from the notes repository, or from a local
// directory in development.
type NotesClient struct {
	Fetcher RawFetcher
	BaseURL string
	// Dir is read instead of BaseURL when Development is set.
	Dir         string
	Development bool
}

// Notes is the outcome of a notes lookup.
type Notes struct {
	Version string `json:"version"`
	Text    string `json:"text"`
	Found   bool   `json:"found"`
}

// Get returns the notes for version with emoji shortcodes converted.
// Missing notes are not an error: Found is false and Text is NoNotesText.
func (c *NotesClient) Get(ctx context.Context, version string) (Notes, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if normalized == "" {
		return Notes{}, errors.New("empty version")
	}

	content, err := c.load(ctx, normalized)
	if err != nil {
		if ctx.Err() != nil {
			return Notes{}, ctx.Err()
		}
		logging.FromContext(ctx).Debug().Ctx(ctx).Err(err).
			Str("component", "releases").
			Str("version", version).
			Msg("release notes unavailable")
		return Notes{Version: version, Text: NoNotesText}, nil
	}
	if strings.TrimSpace(string(content)) == "" {
		return Notes{Version: version, Text: NoNotesText}, nil
	}
	return Notes{Version: version, Text: ConvertEmoji(string(content)), Found: true}, nil
}

func (c *NotesClient) load(ctx context.Context, version string) ([]byte, error) {
	name := version + ".md"
	if c.Development {
		return os.ReadFile(filepath.Join(c.Dir, filepath.Base(name)))
	}
	if c.Fetcher == nil {
		return nil, errors.New("no notes fetcher configured")
	}
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.BaseURL, "/"), name)
	return c.Fetcher.Raw(ctx, url)
}

//nolint:gochecknoglobals // Lookup tables.
var (
	shortcodePattern = regexp.MustCompile(`:[\w]+:`)
	emojiMap         = map[string]string{
		":star2:":         "⭐",
		":green_square:":  "🟩",
		":electric_plug:": "🔌",
		":lady_beetle:":   "🐞",
		":tools:":         "🛠️",
		":warning:":       "⚠️",
		":MacOS:":         "[macOS]",
		":Windows:":       "[Windows]",
	}
)

// ConvertEmoji replaces known :shortcodes: and leaves unknown ones untouched.
func ConvertEmoji(text string) string {
	return shortcodePattern.ReplaceAllStringFunc(text, func(code string) string {
		if repl, ok := emojiMap[code]; ok {
			return repl
		}
		return code
	})
}
