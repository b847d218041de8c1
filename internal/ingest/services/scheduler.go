package services

import (
	"context"
	"sync"
	"time"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
)

// SchedulerService runs the ingestion pipeline on a fixed interval
type SchedulerService struct {
	pipeline *PipelineService
	logger   *core.Logger
	config   *models.SchedulerConfig
	stopChan chan struct{}
	wg       sync.WaitGroup
	runMu    sync.Mutex
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(pipeline *PipelineService, logger *core.Logger, config *models.SchedulerConfig) *SchedulerService {
	return &SchedulerService{
		pipeline: pipeline,
		logger:   logger,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler
func (s *SchedulerService) Start(ctx context.Context) error {
	s.logger.Info("Starting ingestion scheduler", "interval", s.config.UpdateInterval)

	s.wg.Add(1)
	go s.runLoop(ctx)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping ingestion scheduler")
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

// runLoop runs the main scheduling loop
func (s *SchedulerService) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.UpdateInterval)
	defer ticker.Stop()

	// Do initial run
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Scheduler stop signal received")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single ingestion run. At most one run is active
// at a time; a tick that fires while a run is still in progress is
// skipped rather than queued.
func (s *SchedulerService) runOnce(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Warn("Previous ingestion run still active, skipping this cycle")
		return
	}
	defer s.runMu.Unlock()

	report, err := s.pipeline.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled ingestion run failed", "error", err)
		return
	}

	s.logger.Info("Scheduled ingestion run finished",
		"processed", report.Processed,
		"inserted", report.Inserted,
		"duration", report.Duration)
}

// RunNow triggers an immediate ingestion run outside the schedule
func (s *SchedulerService) RunNow(ctx context.Context) (*models.RunReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.pipeline.Run(ctx)
}
