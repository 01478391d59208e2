// Package preview fetches the page behind an article link and extracts a
// short readable excerpt.
package preview

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxChars = 600
	maxBodyBytes    = 5 << 20
)

// Preview is the readable summary of a linked page.
type Preview struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	SiteName string `json:"site_name,omitempty"`
	Excerpt  string `json:"excerpt"`
}

// Fetcher downloads pages via HTTP and runs readability extraction.
type Fetcher struct {
	client   *http.Client
	maxChars int
}

// NewFetcher creates a fetcher. Zero values fall back to defaults.
func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Fetcher{
		maxChars: maxChars,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// HTTPError reports a non-success status from the linked site.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching page: %d %s", e.Code, http.StatusText(e.Code))
}

// Fetch downloads pageURL and returns its title and a truncated excerpt.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Preview, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid link %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Faktajouren/1.0 (link preview)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting content: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		text = strings.TrimSpace(article.Excerpt)
	}

	log.Printf("Fetched preview for %s (%d chars)", pageURL, len(text))
	return &Preview{
		URL:      pageURL,
		Title:    strings.TrimSpace(article.Title),
		SiteName: strings.TrimSpace(article.SiteName),
		Excerpt:  truncate(text, f.maxChars),
	}, nil
}

// truncate cuts s to at most n runes, preferring a word boundary.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
