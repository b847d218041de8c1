package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"newswell/internal/ingest/sources"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write sources file: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, sourcesPath string) (*PipelineService, *StoreService) {
	t.Helper()

	store := newTestStore(t)
	registry := sources.NewRegistry(sourcesPath, testLogger())
	fetcher := NewFetcherService(testLogger(), testFetcherConfig())
	normalizer := NewNormalizer(testLogger(), nil)

	return NewPipelineService(registry, fetcher, normalizer, store, testLogger()), store
}

func TestPipelineRunEndToEnd(t *testing.T) {
	pubDate := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	feed := rssFeed(
		rssItem("First Post", "https://example.com/first", pubDate) +
			rssItem("Second Post", "https://example.com/second", pubDate))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	sourcesPath := writeSourcesFile(t, fmt.Sprintf(`[{"name": "Test Feed", "url": %q}]`, server.URL))
	pipeline, store := newTestPipeline(t, sourcesPath)

	ctx := context.Background()
	report, err := pipeline.Run(ctx)
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	if report.SourcesTotal != 1 {
		t.Errorf("SourcesTotal = %d, want 1", report.SourcesTotal)
	}
	if report.Fetched != 2 || report.Normalized != 2 {
		t.Errorf("Fetched=%d Normalized=%d, want 2 and 2", report.Fetched, report.Normalized)
	}
	if report.Processed != 2 || report.Inserted != 2 {
		t.Errorf("Processed=%d Inserted=%d, want 2 and 2", report.Processed, report.Inserted)
	}

	article, err := store.GetArticleByURL(ctx, "https://example.com/first")
	if err != nil {
		t.Fatalf("Failed to look up stored article: %v", err)
	}
	if article == nil {
		t.Fatal("Expected article to be stored")
	}
	if article.Source != "Test Feed" {
		t.Errorf("Source = %q, want Test Feed", article.Source)
	}

	// Running again ingests the same entries without creating new rows
	report, err = pipeline.Run(ctx)
	if err != nil {
		t.Fatalf("Second pipeline run failed: %v", err)
	}
	if report.Processed != 2 || report.Inserted != 0 {
		t.Errorf("Second run: Processed=%d Inserted=%d, want 2 and 0", report.Processed, report.Inserted)
	}
}

func TestPipelineRunMissingSourcesFile(t *testing.T) {
	pipeline, _ := newTestPipeline(t, filepath.Join(t.TempDir(), "does-not-exist.json"))

	report, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected clean return on missing registry, got %v", err)
	}
	if report.SourcesTotal != 0 || report.Processed != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestPipelineRunEmptyRegistry(t *testing.T) {
	pipeline, _ := newTestPipeline(t, writeSourcesFile(t, `[]`))

	report, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected clean return on empty registry, got %v", err)
	}
	if report.SourcesTotal != 0 {
		t.Errorf("SourcesTotal = %d, want 0", report.SourcesTotal)
	}
}

func TestPipelineRunFailingSourceCounted(t *testing.T) {
	pubDate := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	feed := rssFeed(rssItem("Alive", "https://example.com/alive", pubDate))

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sourcesPath := writeSourcesFile(t, fmt.Sprintf(
		`[{"name": "Up Feed", "url": %q}, {"name": "Down Feed", "url": %q}]`,
		server.URL+"/ok", server.URL+"/down"))
	pipeline, _ := newTestPipeline(t, sourcesPath)

	report, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	if report.SourcesTotal != 2 {
		t.Errorf("SourcesTotal = %d, want 2", report.SourcesTotal)
	}
	if report.SourcesFailed != 1 {
		t.Errorf("SourcesFailed = %d, want 1", report.SourcesFailed)
	}
	if report.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", report.Inserted)
	}
}
