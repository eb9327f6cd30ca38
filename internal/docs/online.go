package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultOnlineURL is the search URL used for online lookups. {query} is
// replaced by the escaped application name.
const DefaultOnlineURL = "https://www.google.com/search?q={query}"

const (
	maxOnlineBody  = 2 << 20
	maxOnlineLines = 200
	userAgent      = "wingman (+https://github.com/wingman-panel/wingman)"
)

// HTTPFetcher downloads a page for a query and reduces it to plain text.
type HTTPFetcher struct {
	Client  *http.Client
	Pattern string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher for pattern with a bounded client.
func NewHTTPFetcher(pattern string, timeout time.Duration) *HTTPFetcher {
	if pattern == "" {
		pattern = DefaultOnlineURL
	}
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		Pattern: pattern,
	}
}

// URL expands the pattern for query.
func (f *HTTPFetcher) URL(query string) string {
	return strings.ReplaceAll(f.Pattern, "{query}", url.QueryEscape(query))
}

// Fetch retrieves the page for query and returns its visible text.
func (f *HTTPFetcher) Fetch(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(query), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body := io.LimitReader(resp.Body, maxOnlineBody)
	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return htmlText(body, maxOnlineLines)
}

// htmlText extracts the visible text of an HTML document, one block per
// line, skipping scripts, styles and other non-content elements.
func htmlText(r io.Reader, maxLines int) (string, error) {
	z := html.NewTokenizer(r)
	var (
		lines []string
		cur   strings.Builder
		skip  int
	)
	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for len(lines) < maxLines {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			flush()
			return strings.Join(lines, "\n"), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript", "svg", "head":
				skip++
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "pre":
				flush()
			}
		case html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				flush()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript", "svg", "head":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "pre":
				flush()
			}
		case html.TextToken:
			if skip == 0 {
				cur.Write(z.Text())
				cur.WriteByte(' ')
			}
		}
	}
	flush()
	return strings.Join(lines, "\n"), nil
}
