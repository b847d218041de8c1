package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion cycle and exit",
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

		report, err := app.pipeline.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Sources:    %d (%d without articles)\n", report.SourcesTotal, report.SourcesFailed)
		fmt.Printf("Fetched:    %d\n", report.Fetched)
		fmt.Printf("Normalized: %d\n", report.Normalized)
		fmt.Printf("Processed:  %d\n", report.Processed)
		fmt.Printf("Inserted:   %d\n", report.Inserted)
		fmt.Printf("Duration:   %s\n", report.Duration.Round(time.Millisecond))
		return nil
	},
}
