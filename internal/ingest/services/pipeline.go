package services

import (
	"context"
	"fmt"
	"time"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
	"newswell/internal/ingest/sources"
)

// PipelineService sequences one ingestion run: fetch every configured
// source, normalize the raw records, and write them source by source
// through the store. Fetch and normalize failures stay contained at
// their entry or source; only store-fatal errors abort the run, and
// rows committed for earlier sources stay committed.
type PipelineService struct {
	registry   *sources.Registry
	fetcher    *FetcherService
	normalizer *Normalizer
	store      *StoreService
	logger     *core.Logger
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	registry *sources.Registry,
	fetcher *FetcherService,
	normalizer *Normalizer,
	store *StoreService,
	logger *core.Logger,
) *PipelineService {
	return &PipelineService{
		registry:   registry,
		fetcher:    fetcher,
		normalizer: normalizer,
		store:      store,
		logger:     logger,
	}
}

// Run executes one end-to-end ingestion run and reports aggregate
// counts. An empty or unreadable source registry is a warning and a
// clean return, never a crash.
func (p *PipelineService) Run(ctx context.Context) (*models.RunReport, error) {
	started := time.Now()
	report := &models.RunReport{}

	srcs, err := p.registry.Load()
	if err != nil {
		p.logger.Warn("No sources loaded, nothing to ingest", "error", err)
		return report, nil
	}
	if len(srcs) == 0 {
		p.logger.Warn("Source registry is empty, nothing to ingest")
		return report, nil
	}

	report.SourcesTotal = len(srcs)
	p.logger.Info("Starting ingestion run", "sources", len(srcs))

	fetched := p.fetcher.FetchAll(ctx, srcs)

	for _, src := range srcs {
		raws := fetched[src.Name]
		if len(raws) == 0 {
			report.SourcesFailed++
			continue
		}
		report.Fetched += len(raws)

		articles := p.normalizer.NormalizeBatch(ctx, raws)
		report.Normalized += len(articles)

		result, err := p.store.AddArticlesBatch(ctx, articles, src.Name, src.URL)
		if err != nil {
			report.Duration = time.Since(started)
			p.logger.Error("Fatal storage error, aborting run", "source", src.Name, "error", err)
			return report, fmt.Errorf("ingestion aborted at source %s: %w", src.Name, err)
		}

		report.Processed += result.Processed
		report.Inserted += result.Inserted
	}

	report.Duration = time.Since(started)
	p.logger.Info("Ingestion run completed",
		"sources", report.SourcesTotal,
		"sources_failed", report.SourcesFailed,
		"fetched", report.Fetched,
		"normalized", report.Normalized,
		"processed", report.Processed,
		"inserted", report.Inserted,
		"duration", report.Duration)

	return report, nil
}
