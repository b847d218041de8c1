package models

import (
	"time"
)

// SourceConfig is one entry of the source registry: a feed origin the
// pipeline should ingest. Name is the matching key that ties normalized
// articles back to their feed URL.
type SourceConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Source is a feed origin as persisted in the store. Upserted by name
// on every ingestion run; never deleted by the pipeline.
type Source struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	FeedURL     string     `json:"feed_url"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
