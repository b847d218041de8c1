package sources

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"newswell/internal/core"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}

func TestRegistryLoad(t *testing.T) {
	path := writeFile(t, `[
		{"name": "BBC News", "url": "https://feeds.bbci.co.uk/news/rss.xml"},
		{"name": "Example", "url": "https://example.com/feed.xml"}
	]`)

	registry := NewRegistry(path, core.NewLogger(slog.LevelError))
	srcs, err := registry.Load()
	if err != nil {
		t.Fatalf("Failed to load sources: %v", err)
	}

	if len(srcs) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(srcs))
	}
	if srcs[0].Name != "BBC News" {
		t.Errorf("Expected file order preserved, got %q first", srcs[0].Name)
	}
	if srcs[1].URL != "https://example.com/feed.xml" {
		t.Errorf("URL = %q", srcs[1].URL)
	}
}

func TestRegistryLoadMissingFile(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "nope.json"), core.NewLogger(slog.LevelError))

	if _, err := registry.Load(); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRegistryLoadMalformedJSON(t *testing.T) {
	registry := NewRegistry(writeFile(t, `{not json`), core.NewLogger(slog.LevelError))

	if _, err := registry.Load(); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestRegistryLoadEmptyList(t *testing.T) {
	registry := NewRegistry(writeFile(t, `[]`), core.NewLogger(slog.LevelError))

	srcs, err := registry.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(srcs) != 0 {
		t.Errorf("Expected no sources, got %d", len(srcs))
	}
}
