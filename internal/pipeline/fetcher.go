package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrDisallowed is returned when robots.txt forbids the URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = sleepContext

const (
	fetchMaxAttempts = 3
	fetchBaseBackoff = 500 * time.Millisecond
)

// Fetcher retrieves article pages for `analyze --url`
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
}

// NewFetcher creates a new Fetcher. robots.txt is consulted when respectRobots is set.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
	if respectRobots {
		f.robots = NewRobotsChecker(userAgent, timeout)
	}
	return f
}

// FetchResult contains the fetched page and its visible text
type FetchResult struct {
	HTML        string
	Text        string
	Title       string
	FinalURL    string
	StatusCode  int
	ContentType string
}

// Fetch retrieves the URL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	result := &FetchResult{
		HTML:        string(body),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if strings.HasPrefix(result.ContentType, "text/plain") {
		result.Text = strings.TrimSpace(result.HTML)
		return result, nil
	}

	result.Title, result.Text, err = ExtractText(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return result, nil
}

// FetchWithRetry retries transient failures (5xx, 429, connection errors)
// with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := fetchBaseBackoff * time.Duration(1<<(attempt-1))
			slog.Debug("retrying fetch", "url", rawURL, "attempt", attempt+1, "backoff", backoff, "error", lastErr)
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableFetchError reports whether a fetch error is worth another attempt
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.HasPrefix(msg, "unexpected status: ") {
		code := strings.TrimPrefix(msg, "unexpected status: ")
		return strings.HasPrefix(code, "5") || strings.HasPrefix(code, "429")
	}
	return strings.HasPrefix(msg, "fetch: ")
}

// ExtractText parses HTML and returns the page title and its visible text,
// skipping scripts, styles and navigation chrome
func ExtractText(htmlContent string) (title string, text string, err error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "svg", "template":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		}

		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(strings.Join(strings.Fields(t), " "))
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return title, buf.String(), nil
}
