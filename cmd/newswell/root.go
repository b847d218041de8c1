package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"newswell/internal/core"
	"newswell/internal/ingest/handlers"
	"newswell/internal/ingest/migrations"
	"newswell/internal/ingest/models"
	"newswell/internal/ingest/services"
	"newswell/internal/ingest/sources"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "newswell",
	Short: "Feed ingestion pipeline and article store",
	Long:  "newswell fetches configured web feeds, normalizes the entries and stores them in a deduplicating sqlite-backed article database.",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(migrateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newswell %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// application wires the configuration, storage and services behind the
// CLI commands. Every command builds one and closes it on exit.
type application struct {
	config     *core.Config
	logger     *core.Logger
	db         *core.Database
	migrations *migrations.Manager
	store      *services.StoreService
	pipeline   *services.PipelineService
	scheduler  *services.SchedulerService
	handlers   *handlers.Handlers
}

func newApplication(ctx context.Context) (*application, error) {
	config, err := core.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := core.NewLogger(level)

	sqlDB, err := sql.Open("sqlite", config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := core.NewDatabase(sqlDB, logger)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := sources.NewRegistry(config.Ingest.SourcesPath, logger.ForComponent("sources"))

	fetcherConfig := &models.FetcherConfig{
		UserAgent:     config.Ingest.UserAgent,
		Timeout:       config.Ingest.FetchTimeout,
		MaxWorkers:    config.Ingest.MaxWorkers,
		RetryAttempts: config.Ingest.RetryAttempts,
		RetryDelay:    config.Ingest.RetryDelay,
		DaysLimit:     config.Ingest.DaysLimit,
	}
	fetcher := services.NewFetcherService(logger.ForComponent("fetcher"), fetcherConfig)

	var summarizer services.Summarizer
	if config.Ingest.SummarizerURL != "" {
		summarizer = services.NewHTTPSummarizer(config.Ingest.SummarizerURL)
	}
	normalizer := services.NewNormalizer(logger.ForComponent("normalizer"), summarizer)

	store := services.NewStoreService(db, logger.ForComponent("store"))
	pipeline := services.NewPipelineService(registry, fetcher, normalizer, store, logger.ForComponent("pipeline"))

	schedulerConfig := models.DefaultSchedulerConfig()
	schedulerConfig.UpdateInterval = config.Ingest.UpdateInterval
	scheduler := services.NewSchedulerService(pipeline, logger.ForComponent("scheduler"), schedulerConfig)

	return &application{
		config:     config,
		logger:     logger,
		db:         db,
		migrations: migrations.NewManager(db, logger.ForComponent("migrations")),
		store:      store,
		pipeline:   pipeline,
		scheduler:  scheduler,
		handlers:   handlers.NewHandlers(logger.ForComponent("api"), store, scheduler),
	}, nil
}

// migrate brings the schema up to date before any command touches it
func (app *application) migrate(ctx context.Context) error {
	if err := app.migrations.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (app *application) Close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database", "error", err)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.migrate(ctx); err != nil {
			return err
		}

		status, err := app.migrations.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Migrations applied: %d\n", status.AppliedCount)
		if status.LastApplied != nil {
			fmt.Printf("Latest: %03d %s\n", status.LastApplied.Version, status.LastApplied.Name)
		}
		return nil
	},
}
