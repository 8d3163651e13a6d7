package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves and normalizes entries from a single feed source.
type Fetcher struct {
	gofeedParser *gofeed.Parser
	httpClient   *http.Client
	userAgent    string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		gofeedParser: gofeed.NewParser(),
		httpClient:   httpClient,
		userAgent:    userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, source Source) ([]Entry, error) {
	data, err := f.fetchFeed(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, f.normalizeItem(item))
	}

	return entries, nil
}

func (f *Fetcher) normalizeItem(item *gofeed.Item) Entry {
	return Entry{
		ID:      cmp.Or(item.GUID, item.Link),
		Title:   strings.TrimSpace(item.Title),
		Summary: strings.TrimSpace(cmp.Or(item.Description, item.Content)),
		Link:    item.Link,
	}
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
