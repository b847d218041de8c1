package migrations

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"newswell/internal/core"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) (*sql.DB, *core.Database) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, core.NewDatabase(db, core.NewLogger(slog.LevelError))
}

func TestIngestMigrations(t *testing.T) {
	db, coreDB := newTestDB(t)
	manager := NewManager(coreDB, core.NewLogger(slog.LevelError))

	ctx := context.Background()
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}

	expectedMigrations := len(manager.Migrations())
	if count != expectedMigrations {
		t.Errorf("Expected %d migrations, got %d", expectedMigrations, count)
	}

	tables := []string{"sources", "articles", "categories", "article_categories"}
	for _, table := range tables {
		var tableCount int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableCount)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if tableCount != 1 {
			t.Errorf("Table %s was not created", table)
		}
	}

	// Migrations are idempotent
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to re-apply migrations: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}
	if count != expectedMigrations {
		t.Errorf("Expected %d migrations after re-apply, got %d", expectedMigrations, count)
	}
}

func TestIngestMigrationRollback(t *testing.T) {
	db, coreDB := newTestDB(t)
	manager := NewManager(coreDB, core.NewLogger(slog.LevelError))

	ctx := context.Background()
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Failed to rollback migrations: %v", err)
	}

	tables := []string{"sources", "articles", "categories", "article_categories"}
	for _, table := range tables {
		var tableCount int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableCount)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if tableCount != 0 {
			t.Errorf("Table %s was not removed during rollback", table)
		}
	}
}
