package models

import (
	"time"
)

// SchedulerConfig holds configuration for the ingestion scheduler
type SchedulerConfig struct {
	UpdateInterval time.Duration `json:"update_interval"`
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		UpdateInterval: 1 * time.Hour,
	}
}

// RunReport aggregates the counts of one end-to-end ingestion run.
type RunReport struct {
	SourcesTotal  int           `json:"sources_total"`
	SourcesFailed int           `json:"sources_failed"`
	Fetched       int           `json:"fetched"`
	Normalized    int           `json:"normalized"`
	Processed     int           `json:"processed"`
	Inserted      int           `json:"inserted"`
	Duration      time.Duration `json:"duration"`
}
