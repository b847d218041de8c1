package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newswell/internal/core"
	"newswell/internal/ingest/models"

	stdhtml "html"
)

// Normalizer turns raw feed records into canonical articles. It is a
// pure per-record transformation: no field failure is ever fatal, and a
// record that cannot be normalized at all passes through unchanged.
type Normalizer struct {
	logger     *core.Logger
	summarizer Summarizer
}

// NewNormalizer creates a normalizer. summarizer may be nil, in which
// case articles are stored without generated summaries.
func NewNormalizer(logger *core.Logger, summarizer Summarizer) *Normalizer {
	return &Normalizer{
		logger:     logger,
		summarizer: summarizer,
	}
}

// NormalizeArticle normalizes a single record. It never fails: on an
// internal error the record is passed through minimally mapped, logged
// but not dropped.
func (n *Normalizer) NormalizeArticle(ctx context.Context, raw models.RawArticle) models.Article {
	article, err := n.normalize(ctx, raw)
	if err != nil {
		n.logger.Error("Normalization failed, passing record through", "url", raw.URL, "error", err)
		return passthrough(raw)
	}
	return article
}

// NormalizeBatch normalizes every element of a batch. A failure on one
// element skips that element and never aborts the rest.
func (n *Normalizer) NormalizeBatch(ctx context.Context, raws []models.RawArticle) []models.Article {
	out := make([]models.Article, 0, len(raws))
	for _, raw := range raws {
		article, err := n.normalize(ctx, raw)
		if err != nil {
			n.logger.Error("Skipping article that failed normalization", "url", raw.URL, "error", err)
			continue
		}
		out = append(out, article)
	}
	return out
}

func (n *Normalizer) normalize(ctx context.Context, raw models.RawArticle) (article models.Article, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("normalize: %v", p)
		}
	}()

	for field, value := range map[string]string{
		"title":      raw.Title,
		"url":        raw.URL,
		"source":     raw.Source,
		"scraped_at": raw.ScrapedAt,
	} {
		if value == "" {
			n.logger.Warn("Missing required field, defaulting", "field", field, "url", raw.URL)
		}
	}

	scrapedAt := raw.ScrapedAt
	if scrapedAt == "" {
		scrapedAt = time.Now().UTC().Format(time.RFC3339)
	}

	content := n.CleanText(raw.Content)
	if content == "" {
		content = n.CleanText(raw.Description)
	}

	article = models.Article{
		Title:      n.CleanText(raw.Title),
		URL:        n.NormalizeURL(raw.URL),
		Source:     raw.Source,
		ScrapedAt:  scrapedAt,
		Date:       n.NormalizeDate(raw.Date),
		Author:     n.CleanText(raw.Author),
		Content:    content,
		Categories: n.NormalizeCategories(raw.Categories),
		ImageURL:   n.NormalizeURL(raw.ImageURL),
	}

	article.Summary = n.summarize(ctx, content)

	return article, nil
}

// summarize asks the configured collaborator for a short summary of the
// cleaned content. Best-effort only: no summarizer, empty content or a
// service failure all yield an empty summary, never an error.
func (n *Normalizer) summarize(ctx context.Context, content string) string {
	if n.summarizer == nil || strings.TrimSpace(content) == "" {
		return ""
	}

	summary, err := n.summarizer.Summarize(ctx, content)
	if err != nil {
		n.logger.Warn("Summarization failed", "error", err)
		return ""
	}
	return strings.TrimSpace(summary)
}

// CleanText decodes HTML entities, strips markup and collapses
// whitespace. An empty result means the field is absent.
func (n *Normalizer) CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = stdhtml.UnescapeString(text)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}

// NormalizeURL keeps http(s) URLs with a host and rejects everything
// else to empty rather than raising.
func (n *Normalizer) NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		n.logger.Warn("Invalid URL dropped", "url", raw)
		return ""
	}
	return raw
}

// dateFormats are tried in order; the first match wins and is re-emitted
// in ISO-8601 with the matching precision.
var dateFormats = []struct {
	parse string
	out   string
}{
	{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05-07:00"},
	{"2006-01-02T15:04:05", "2006-01-02T15:04:05"},
	{"2006-01-02 15:04:05", "2006-01-02T15:04:05"},
	{time.RFC1123Z, "2006-01-02T15:04:05-07:00"},
	{time.RFC1123, "2006-01-02T15:04:05-07:00"},
	{"2006-01-02", "2006-01-02T15:04:05"},
}

// NormalizeDate parses a date against the known feed formats and
// re-emits it in ISO-8601. No match is a warning, never fatal.
func (n *Normalizer) NormalizeDate(date string) string {
	if date == "" {
		return ""
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format.parse, date); err == nil {
			return t.Format(format.out)
		}
	}

	n.logger.Warn("Unrecognized date format", "date", date)
	return ""
}

// NormalizeCategories cleans each name and collapses the result into a
// set: non-empty, deduplicated, order not significant.
func (n *Normalizer) NormalizeCategories(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		clean := n.CleanText(category)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// passthrough maps a raw record field-for-field without cleaning, for
// the fail-open path.
func passthrough(raw models.RawArticle) models.Article {
	return models.Article{
		Title:      raw.Title,
		URL:        raw.URL,
		Source:     raw.Source,
		ScrapedAt:  raw.ScrapedAt,
		Date:       raw.Date,
		Author:     raw.Author,
		Content:    raw.Content,
		Categories: raw.Categories,
		ImageURL:   raw.ImageURL,
	}
}
