package models

import (
	"time"
)

// FetcherConfig holds configuration for the fetcher service
type FetcherConfig struct {
	UserAgent     string        `json:"user_agent"`
	Timeout       time.Duration `json:"timeout"`
	MaxWorkers    int           `json:"max_workers"`
	RetryAttempts int           `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
	DaysLimit     int           `json:"days_limit"`
}

// DefaultFetcherConfig returns the fetcher defaults: five concurrent
// sources, three attempts per feed with a fixed five second delay, a
// thirty second request timeout and a seven day recency window.
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		UserAgent:     "newswell/1.0 (+feed aggregator)",
		Timeout:       30 * time.Second,
		MaxWorkers:    5,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
		DaysLimit:     7,
	}
}
