package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxBodySize = 5 << 20

type Metadata struct {
	Title     string
	Thumbnail string
}

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	feedParser *gofeed.Parser
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		feedParser: gofeed.NewParser(),
	}
}

// Fetch returns a title and optional thumbnail for pageURL. It never fails:
// any network or parse problem yields a title derived from the URL itself.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Metadata {
	meta, err := f.fetch(ctx, pageURL)
	if err != nil {
		slog.Debug("Metadata extraction failed, using URL fallback", "url", pageURL, "error", err)
		return Metadata{Title: FallbackTitle(pageURL)}
	}

	slog.Debug("Metadata extracted", "url", pageURL, "title", meta.Title, "thumbnail", meta.Thumbnail)
	return meta
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (Metadata, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid URL: %w", err)
	}

	data, contentType, err := f.download(ctx, pageURL)
	if err != nil {
		return Metadata{}, err
	}

	if isFeed(contentType) {
		return f.fromFeed(data)
	}

	return fromHTML(data, parsed)
}

func (f *Fetcher) download(ctx context.Context, pageURL string) ([]byte, string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, strings.ToLower(resp.Header.Get("Content-Type")), nil
}

func isFeed(contentType string) bool {
	if strings.Contains(contentType, "rss") || strings.Contains(contentType, "atom") {
		return true
	}
	return strings.Contains(contentType, "xml") && !strings.Contains(contentType, "html")
}

func (f *Fetcher) fromFeed(data []byte) (Metadata, error) {
	feed, err := f.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse feed: %w", err)
	}

	meta := Metadata{Title: strings.TrimSpace(feed.Title)}
	if feed.Image != nil {
		meta.Thumbnail = feed.Image.URL
	}
	if meta.Title == "" {
		meta.Title = untitled
	}

	return meta, nil
}

func fromHTML(data []byte, pageURL *url.URL) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := Metadata{
		Title: firstMeta(doc,
			`meta[property="og:title"]`,
			`meta[name="twitter:title"]`,
			`meta[property="twitter:title"]`,
			`meta[name="dc.title"]`,
			`meta[name="DC.title"]`,
		),
		Thumbnail: firstMeta(doc,
			`meta[property="og:image"]`,
			`meta[property="og:image:url"]`,
			`meta[name="twitter:image"]`,
			`meta[property="twitter:image"]`,
		),
	}

	if meta.Title == "" || meta.Thumbnail == "" {
		article, err := readability.FromReader(bytes.NewReader(data), pageURL)
		if err == nil {
			if meta.Title == "" {
				meta.Title = strings.TrimSpace(article.Title)
			}
			if meta.Thumbnail == "" {
				meta.Thumbnail = article.Image
			}
		} else {
			slog.Debug("Readability fallback failed", "url", pageURL.String(), "error", err)
		}
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if meta.Title == "" {
		meta.Title = untitled
	}

	meta.Thumbnail = resolveReference(pageURL, meta.Thumbnail)

	return meta, nil
}

func firstMeta(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		content := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
		if content != "" {
			return content
		}
	}
	return ""
}

func resolveReference(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
