package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/exptechtw/tremstore/pkg/version"
)

const (
	// maxBodyBytes caps a single feed body.
	maxBodyBytes = 32 << 20

	defaultHTTPTimeout = 30 * time.Second
)

// Source fetches the raw body at a URL.
type Source interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPSource fetches over HTTP GET.
type HTTPSource struct {
	HTTPClient *http.Client
	UserAgent  string
	// Token is sent as a bearer token, but only to AuthHost.
	Token    string
	AuthHost string
	// MaxBodyBytes caps the body size; zero means 32 MiB.
	MaxBodyBytes int64
}

// NewHTTPSource returns an HTTPSource with a 30s client timeout.
func NewHTTPSource() *HTTPSource {
	return &HTTPSource{
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
		UserAgent:  version.UserAgent(),
		AuthHost:   "api.github.com",
	}
}

// Fetch performs one GET. Non-2xx responses become *HTTPStatusError.
func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	if s.Token != "" && s.sendsToken(req.URL) {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = maxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("reading %s: %w (limit %d bytes)", rawURL, ErrBodyTooLarge, limit)
	}
	return body, nil
}

func (s *HTTPSource) sendsToken(u *url.URL) bool {
	return s.AuthHost != "" && strings.EqualFold(u.Hostname(), s.AuthHost)
}
