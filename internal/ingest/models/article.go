package models

import (
	"time"
)

// RawArticle is one feed entry as extracted by the fetcher, before any
// cleaning. Date holds an ISO-8601 string when the feed supplied a
// parseable timestamp, or the raw date string (possibly empty) when it
// did not; the normalizer gets the final say.
type RawArticle struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Date        string   `json:"date,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	ScrapedAt   string   `json:"scraped_at"`
	Source      string   `json:"source"`
}

// Article is the canonical record written to and read from the store.
// Optional fields are empty strings / nil slices when absent (sparse
// form); Date is an ISO-8601 string or empty when the source date was
// missing or unparseable. URL is the dedup key.
type Article struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Date       string   `json:"date,omitempty"`
	Author     string   `json:"author,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Content    string   `json:"content,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Categories []string `json:"categories,omitempty"`
	ScrapedAt  string   `json:"scraped_at"`
	Source     string   `json:"source"`

	// Populated on reads that join through sources.
	SourceID  int       `json:"source_id,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchResult reports what a batch write actually did. Processed counts
// every article that went through storage without a fatal error,
// including idempotent re-ingestions of already-known URLs; Inserted
// counts only genuinely new rows.
type BatchResult struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
}
