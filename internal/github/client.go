// Package github fetches raw repository content and release assets from GitHub.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/exptechtw/tremstore/internal/fetcher"
	"github.com/exptechtw/tremstore/internal/logging"
	"github.com/exptechtw/tremstore/pkg/version"
)

// Default endpoints.
const (
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
	DefaultAPIBaseURL = "https://api.github.com"

	defaultBranch       = "main"
	readmeFile          = "README.md"
	defaultTimeout      = 30 * time.Second
	downloadTimeout     = 10 * time.Minute
	progressReportBytes = 1 << 20
)

// ErrNotFound is returned when a file or release does not exist.
var ErrNotFound = errors.New("not found on GitHub")

// Client talks to GitHub's raw content host and REST API.
type Client struct {
	HTTPClient *http.Client
	RawBaseURL string
	APIBaseURL string
	// Token is sent only to the API host.
	Token     string
	UserAgent string
}

// NewClient returns a Client for public GitHub.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		RawBaseURL: DefaultRawBaseURL,
		APIBaseURL: DefaultAPIBaseURL,
		UserAgent:  version.UserAgent(),
	}
}

func (c *Client) source() *fetcher.HTTPSource {
	authHost := ""
	if u, err := url.Parse(c.APIBaseURL); err == nil {
		authHost = u.Hostname()
	}
	return &fetcher.HTTPSource{
		HTTPClient: c.HTTPClient,
		UserAgent:  c.UserAgent,
		Token:      c.Token,
		AuthHost:   authHost,
	}
}

// Raw fetches url. A 404 is reported as ErrNotFound wrapping the status error.
func (c *Client) Raw(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.source().Fetch(ctx, rawURL)
	if err != nil {
		if fetcher.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	return body, nil
}

// ReadmeURL is the raw README of fullName ("owner/repo") on the main branch.
func (c *Client) ReadmeURL(fullName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", strings.TrimSuffix(c.RawBaseURL, "/"), fullName, defaultBranch, readmeFile)
}

// Readme returns the README of fullName.
func (c *Client) Readme(ctx context.Context, fullName string) (string, error) {
	if strings.Count(fullName, "/") != 1 {
		return "", fmt.Errorf("invalid repository name %q: want owner/repo", fullName)
	}
	body, err := c.Raw(ctx, c.ReadmeURL(fullName))
	if err != nil {
		return "", fmt.Errorf("fetching README of %s: %w", fullName, err)
	}
	return string(body), nil
}

// ReleasesURL is the REST endpoint listing the releases of fullName.
func (c *Client) ReleasesURL(fullName string) string {
	return fmt.Sprintf("%s/repos/%s/releases", strings.TrimSuffix(c.APIBaseURL, "/"), fullName)
}

// ProgressFunc reports bytes written so far and the total (-1 when unknown).
type ProgressFunc func(written, total int64)

// DownloadAsset streams url into destPath through a temporary file in the same
// directory, so an interrupted download never leaves a partial file behind.
func (c *Client) DownloadAsset(ctx context.Context, assetURL, destPath string, progress ProgressFunc) error {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	if client.Timeout != 0 && client.Timeout < downloadTimeout {
		clone := *client
		clone.Timeout = downloadTimeout
		client = &clone
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", assetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &fetcher.HTTPStatusError{URL: assetURL, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, statusErr)
		}
		return statusErr
	}

	dir := filepath.Dir(destPath)
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	w := io.Writer(tmp)
	if progress != nil {
		w = &progressWriter{w: tmp, total: resp.ContentLength, report: progress}
	}
	written, err := io.Copy(w, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	if progress != nil {
		progress(written, resp.ContentLength)
	}

	if err = os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("moving download into place: %w", err)
	}

	log.Debug().Ctx(ctx).
		Str("component", "github").
		Str("operation", "download").
		Str("path", destPath).
		Int64("bytes", written).
		Msg("asset downloaded")
	return nil
}

type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	reported int64
	report   ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.written-p.reported >= progressReportBytes {
		p.reported = p.written
		p.report(p.written, p.total)
	}
	return n, err
}
