package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
)

// FetcherService retrieves and parses syndication feeds. Every source
// is processed independently: a failing feed yields zero results for
// that source and never aborts its siblings.
type FetcherService struct {
	client *http.Client
	parser *gofeed.Parser
	logger *core.Logger
	config *models.FetcherConfig
}

// NewFetcherService creates a new fetcher service
func NewFetcherService(logger *core.Logger, config *models.FetcherConfig) *FetcherService {
	client := &http.Client{
		Timeout: config.Timeout,
	}

	return &FetcherService{
		client: client,
		parser: gofeed.NewParser(),
		logger: logger,
		config: config,
	}
}

// FetchAll fetches every source over a bounded worker pool and returns
// the per-source raw article lists keyed by source name. Workers share
// nothing mutable: each one writes only its own result slot.
func (f *FetcherService) FetchAll(ctx context.Context, srcs []models.SourceConfig) map[string][]models.RawArticle {
	if len(srcs) == 0 {
		return map[string][]models.RawArticle{}
	}

	workers := f.config.MaxWorkers
	if workers > len(srcs) {
		workers = len(srcs)
	}

	jobs := make(chan int, len(srcs))
	results := make([][]models.RawArticle, len(srcs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = f.FetchSource(ctx, srcs[idx])
			}
		}()
	}

	for i := range srcs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make(map[string][]models.RawArticle, len(srcs))
	for i, src := range srcs {
		out[src.Name] = results[i]
	}
	return out
}

// FetchSource fetches and parses a single feed. Failures are logged and
// reported as an empty list; no partial entries are fabricated.
func (f *FetcherService) FetchSource(ctx context.Context, src models.SourceConfig) []models.RawArticle {
	logger := f.logger.ForSource(src.Name)
	logger.Info("Fetching feed", "url", src.URL)

	if err := validateFeedURL(src.URL); err != nil {
		logger.Error("Invalid feed URL", "url", src.URL, "error", err)
		return nil
	}

	body, err := f.fetchWithRetry(ctx, src.URL)
	if err != nil {
		logger.Error("Failed to fetch feed after retries", "url", src.URL, "error", err)
		return nil
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to parse feed", "url", src.URL, "error", err)
		return nil
	}

	if len(feed.Items) == 0 {
		logger.Warn("Feed has no entries", "url", src.URL)
		return nil
	}

	dateLimit := time.Now().AddDate(0, 0, -f.config.DaysLimit)
	now := time.Now().UTC().Format(time.RFC3339)

	results := make([]models.RawArticle, 0, len(feed.Items))
	errorCount := 0
	for _, item := range feed.Items {
		raw, err := f.extractEntry(item, src.Name, now)
		if err != nil {
			errorCount++
			logger.Error("Skipping malformed entry", "error", err)
			continue
		}

		// Entries with a parseable publish date older than the window
		// are dropped. Entries without a reliable date are kept: a
		// missing date must not silently discard content.
		if published := entryTimestamp(item); published != nil {
			if published.Before(dateLimit) {
				logger.Debug("Dropping entry outside recency window", "title", raw.Title)
				continue
			}
			raw.Date = published.UTC().Format(time.RFC3339)
		}

		results = append(results, raw)
	}

	logger.Info("Feed fetched", "entries", len(feed.Items), "kept", len(results), "errors", errorCount)
	return results
}

// fetchWithRetry retrieves the feed body, retrying transient failures a
// bounded number of times with a fixed delay between attempts.
func (f *FetcherService) fetchWithRetry(ctx context.Context, feedURL string) ([]byte, error) {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", f.config.UserAgent)
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Warn("Feed request failed", "url", feedURL, "attempt", attempt, "error", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("feed returned status %d", resp.StatusCode)
			f.logger.Warn("Feed request failed", "url", feedURL, "attempt", attempt, "error", err)
			return err
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.config.RetryDelay), uint64(f.config.RetryAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, core.NewFetchError(fmt.Sprintf("giving up after %d attempts", attempt), err)
	}
	return body, nil
}

// extractEntry maps a feed item onto a raw article record. A panic on a
// malformed item is converted to an error so one bad entry only skips
// itself.
func (f *FetcherService) extractEntry(item *gofeed.Item, sourceName, scrapedAt string) (raw models.RawArticle, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed entry: %v", p)
		}
	}()

	if item == nil {
		return models.RawArticle{}, fmt.Errorf("nil entry")
	}

	raw = models.RawArticle{
		Title:       item.Title,
		URL:         item.Link,
		Date:        item.Published,
		Description: item.Description,
		Content:     item.Content,
		Categories:  item.Categories,
		ScrapedAt:   scrapedAt,
		Source:      sourceName,
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		raw.Author = item.Authors[0].Name
	}
	if item.Image != nil {
		raw.ImageURL = item.Image.URL
	}

	return raw, nil
}

// entryTimestamp returns the entry's publish time, falling back to the
// update time for feeds that only carry the latter.
func entryTimestamp(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// validateFeedURL requires an absolute http(s) URL with a host.
func validateFeedURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
