package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

var flagNoScheduler bool

func init() {
	serveCmd.Flags().BoolVar(&flagNoScheduler, "no-scheduler", false, "serve the read API without periodic ingestion runs")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the article API server with periodic ingestion",
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

		if !flagNoScheduler {
			if err := app.scheduler.Start(ctx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
		}

		mux := chi.NewRouter()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.RequestID)
		mux.Use(middleware.RealIP)
		mux.Use(middleware.Logger)

		mux.Route("/api/v1", func(r chi.Router) {
			r.Get("/healthcheck", app.healthcheckHandler)
			app.handlers.RegisterRoutes(r)
		})

		addr := fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port)
		srv := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  time.Minute,
		}

		errChan := make(chan error, 1)
		go func() {
			app.logger.Info("Starting HTTP server", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return fmt.Errorf("server error: %w", err)
		case sig := <-quit:
			app.logger.Info("Shutting down", "signal", sig.String())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if !flagNoScheduler {
			if err := app.scheduler.Stop(shutdownCtx); err != nil {
				app.logger.Error("Failed to stop scheduler", "error", err)
			}
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		app.logger.Info("Server stopped")
		return nil
	},
}

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"available","version":%q}`, version)
}
