package migrations

import (
	"newswell/internal/core"
)

// Migration001CreateIngestTables creates the ingestion schema
var Migration001CreateIngestTables = core.Migration{
	Version:     1,
	Name:        "create_ingest_tables",
	Description: "Create sources, articles, categories and link tables",
	UpSQL: `
		-- Feed sources; upserted by name on every ingestion run
		CREATE TABLE IF NOT EXISTS sources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			last_updated TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Articles; url is the global dedup key
		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			source_id INTEGER NOT NULL REFERENCES sources(id),
			-- ISO-8601 text; kept as TEXT so lexical range filters work
			date TEXT,
			author TEXT,
			summary TEXT,
			content TEXT,
			image_url TEXT,
			scraped_at TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Free-form tags, created lazily on first sight
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		-- Article-category links; pairs are a set, not a multiset
		CREATE TABLE IF NOT EXISTS article_categories (
			article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, category_id)
		);

		CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
		CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source_id);
		CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
	`,
	DownSQL: `
		DROP INDEX IF EXISTS idx_articles_url;
		DROP INDEX IF EXISTS idx_articles_source;
		DROP INDEX IF EXISTS idx_articles_date;

		DROP TABLE IF EXISTS article_categories;
		DROP TABLE IF EXISTS categories;
		DROP TABLE IF EXISTS articles;
		DROP TABLE IF EXISTS sources;
	`,
}
