package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NewsBroadcaster/internal/feeds"
)

const fullTextExcerptRunes = 360

// RSSFetcher pulls configured RSS feeds and optionally replaces thin
// descriptions with an excerpt of the linked article.
type RSSFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ feeds.Fetcher = (*RSSFetcher)(nil)

// NewRSSFetcher builds the fetcher; a nil client falls back to a default.
func NewRSSFetcher(client *http.Client, logger *slog.Logger) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RSSFetcher{client: client, logger: logger}
}

func (f *RSSFetcher) Name() string { return "rss" }

// Fetch downloads every endpoint feed; a broken feed is skipped, not fatal.
func (f *RSSFetcher) Fetch(ctx context.Context, req feeds.Request) ([]map[string]any, error) {
	fullText := req.Options["fetchFullText"] == "true"

	var items []map[string]any
	for _, endpoint := range req.Endpoints {
		feedItems, err := f.fetchFeed(ctx, endpoint.URL, fullText)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("feed failed", "url", endpoint.URL, "error", err)
			}
			continue
		}
		items = append(items, feedItems...)
	}
	return items, nil
}

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func (f *RSSFetcher) fetchFeed(ctx context.Context, feedURL string, fullText bool) ([]map[string]any, error) {
	body, err := f.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	sourceName := doc.Channel.Title
	if sourceName == "" {
		sourceName = hostOf(feedURL)
	}

	items := make([]map[string]any, 0, len(doc.Channel.Items))
	for _, entry := range doc.Channel.Items {
		summary := entry.Description
		if fullText && entry.Link != "" {
			if excerpt := f.articleExcerpt(ctx, entry.Link); excerpt != "" {
				summary = excerpt
			}
		}
		items = append(items, map[string]any{
			"title":        strings.TrimSpace(entry.Title),
			"summary":      summary,
			"published_at": strings.TrimSpace(entry.PubDate),
			"source_name":  sourceName,
			"link":         entry.Link,
		})
	}
	return items, nil
}

// articleExcerpt fetches the linked page and extracts a plain-text excerpt.
func (f *RSSFetcher) articleExcerpt(ctx context.Context, link string) string {
	body, err := f.get(ctx, link)
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("full-text fetch failed", "url", link, "error", err)
		}
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return ""
	}
	if utf8.RuneCountInString(text) > fullTextExcerptRunes {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:fullTextExcerptRunes-1])) + "…"
	}
	return text
}

func (f *RSSFetcher) get(ctx context.Context, target string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return "rss"
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
