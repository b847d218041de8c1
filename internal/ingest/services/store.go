package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
)

// StoreService owns the relational schema: sources, articles,
// categories and their links. Writes are idempotent under re-ingestion;
// the article URL is the sole dedup key.
//
// All writes of one ingestion run go through a single StoreService so
// the lookup-then-insert dedup stays race-free. Single writer, multiple
// readers.
type StoreService struct {
	db     *core.Database
	logger *core.Logger
}

// NewStoreService creates a new store service
func NewStoreService(db *core.Database, logger *core.Logger) *StoreService {
	return &StoreService{
		db:     db,
		logger: logger,
	}
}

// AddSource upserts a source by name: an existing source gets its url
// and last_updated refreshed, a new one is created. Never fails on a
// duplicate name.
func (s *StoreService) AddSource(ctx context.Context, name, url string) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var id int
	err := s.db.QueryRowWithTimeout(ctx, `SELECT id FROM sources WHERE name = ?`, name).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecWithTimeout(ctx,
			`UPDATE sources SET url = ?, last_updated = ? WHERE id = ?`,
			url, now, id)
		if err != nil {
			return 0, fmt.Errorf("failed to update source %s: %w", name, err)
		}
		return id, nil

	case err == sql.ErrNoRows:
		err = s.db.QueryRowWithTimeout(ctx,
			`INSERT INTO sources (name, url, last_updated) VALUES (?, ?, ?) RETURNING id`,
			name, url, now).Scan(&id)
		if err != nil {
			if core.IsConstraintViolation(err) {
				// Lost a race with another writer; the row exists now.
				if rerr := s.db.QueryRowWithTimeout(ctx, `SELECT id FROM sources WHERE name = ?`, name).Scan(&id); rerr == nil {
					return id, nil
				}
			}
			return 0, fmt.Errorf("failed to create source %s: %w", name, err)
		}
		s.logger.Info("Created source", "name", name, "id", id)
		return id, nil

	default:
		return 0, fmt.Errorf("failed to look up source %s: %w", name, err)
	}
}

// AddArticle stores one article under the given source. If the URL is
// already known the existing id is returned and nothing is written
// (idempotent re-ingestion). inserted reports whether a new row was
// created.
func (s *StoreService) AddArticle(ctx context.Context, article models.Article, sourceID int) (id int, inserted bool, err error) {
	err = s.db.QueryRowWithTimeout(ctx, `SELECT id FROM articles WHERE url = ?`, article.URL).Scan(&id)
	if err == nil {
		s.logger.Debug("Article already exists", "url", article.URL, "id", id)
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to look up article by url: %w", err)
	}

	err = s.db.Transaction(ctx, func(tx *sql.Tx) error {
		insertErr := tx.QueryRowContext(ctx, `
			INSERT INTO articles (title, url, source_id, date, author, summary, content, image_url, scraped_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			article.Title,
			article.URL,
			sourceID,
			nullIfEmpty(article.Date),
			nullIfEmpty(article.Author),
			nullIfEmpty(article.Summary),
			nullIfEmpty(article.Content),
			nullIfEmpty(article.ImageURL),
			article.ScrapedAt,
		).Scan(&id)
		if insertErr != nil {
			return insertErr
		}
		return s.addCategoriesTx(ctx, tx, id, article.Categories)
	})

	if err != nil {
		if core.IsConstraintViolation(err) {
			// Another write beat the lookup to this URL; treat it as
			// "already exists", not as an error.
			if rerr := s.db.QueryRowWithTimeout(ctx, `SELECT id FROM articles WHERE url = ?`, article.URL).Scan(&id); rerr == nil {
				return id, false, nil
			}
		}
		return 0, false, fmt.Errorf("failed to create article: %w", err)
	}

	s.logger.Info("Created article", "id", id, "title", article.Title)
	return id, true, nil
}

// AddCategories attaches category names to an article, creating
// categories on first sight. Re-linking an existing pair is a no-op.
func (s *StoreService) AddCategories(ctx context.Context, articleID int, names []string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return s.addCategoriesTx(ctx, tx, articleID, names)
	})
}

func (s *StoreService) addCategoriesTx(ctx context.Context, tx *sql.Tx, articleID int, names []string) error {
	for _, name := range names {
		var categoryID int
		err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&categoryID)
		if err == sql.ErrNoRows {
			err = tx.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES (?) RETURNING id`, name).Scan(&categoryID)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO article_categories (article_id, category_id) VALUES (?, ?)`,
			articleID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to link category %s: %w", name, err)
		}
	}
	return nil
}

// AddArticlesBatch upserts the source once, then stores each article in
// turn. A failing article is logged and skipped; the batch continues.
// Only a failure to upsert the source aborts the whole batch.
func (s *StoreService) AddArticlesBatch(ctx context.Context, articles []models.Article, sourceName, sourceURL string) (models.BatchResult, error) {
	var result models.BatchResult

	sourceID, err := s.AddSource(ctx, sourceName, sourceURL)
	if err != nil {
		return result, fmt.Errorf("failed to upsert source for batch: %w", err)
	}

	for _, article := range articles {
		_, inserted, err := s.AddArticle(ctx, article, sourceID)
		if err != nil {
			s.logger.Error("Failed to store article, skipping", "url", article.URL, "error", err)
			continue
		}
		result.Processed++
		if inserted {
			result.Inserted++
		}
	}

	s.logger.Info("Batch stored",
		"source", sourceName,
		"processed", result.Processed,
		"inserted", result.Inserted,
		"total", len(articles))
	return result, nil
}

const articleSelect = `
	SELECT a.id, a.title, a.url, a.date, a.author, a.summary, a.content, a.image_url,
	       a.scraped_at, a.created_at,
	       s.id, s.name, s.url,
	       GROUP_CONCAT(DISTINCT c.name)
	FROM articles a
	JOIN sources s ON a.source_id = s.id
	LEFT JOIN article_categories ac ON a.id = ac.article_id
	LEFT JOIN categories c ON ac.category_id = c.id
`

// GetRecentArticles returns articles dated within the last days,
// newest first, annotated with their source and the union of their
// category names.
func (s *StoreService) GetRecentArticles(ctx context.Context, limit, days int) ([]models.Article, error) {
	query := articleSelect + `
		WHERE a.date >= ?
		GROUP BY a.id
		ORDER BY a.date DESC
		LIMIT ?
	`

	rows, err := s.db.QueryWithTimeout(ctx, query, dateCutoff(days), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetArticlesByCategory returns articles linked to the named category,
// newest first.
func (s *StoreService) GetArticlesByCategory(ctx context.Context, category string, limit int) ([]models.Article, error) {
	query := articleSelect + `
		WHERE a.id IN (
			SELECT ac2.article_id
			FROM article_categories ac2
			JOIN categories c2 ON ac2.category_id = c2.id
			WHERE c2.name = ?
		)
		GROUP BY a.id
		ORDER BY a.date DESC
		LIMIT ?
	`

	rows, err := s.db.QueryWithTimeout(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles by category: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetArticleByURL returns the article with the exact URL, or nil when
// no such article exists.
func (s *StoreService) GetArticleByURL(ctx context.Context, url string) (*models.Article, error) {
	query := articleSelect + `
		WHERE a.url = ?
		GROUP BY a.id
	`

	rows, err := s.db.QueryWithTimeout(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query article by url: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

// GetAllSources returns every configured source ever ingested, newest
// update first.
func (s *StoreService) GetAllSources(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryWithTimeout(ctx,
		`SELECT id, name, url, last_updated, created_at FROM sources ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var out []models.Source
	for rows.Next() {
		var (
			src         models.Source
			lastUpdated sql.NullString
		)
		if err := rows.Scan(&src.ID, &src.Name, &src.FeedURL, &lastUpdated, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if lastUpdated.Valid {
			if t, perr := time.Parse(time.RFC3339, lastUpdated.String); perr == nil {
				src.LastUpdated = &t
			}
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// GetAllCategories returns every category name, alphabetical.
func (s *StoreService) GetAllCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryWithTimeout(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetStatistics returns aggregate counts over the whole store. Sources
// and categories without articles appear with a count of 0.
func (s *StoreService) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{
		ArticlesBySource:   make(map[string]int),
		ArticlesByCategory: make(map[string]int),
		ArticlesByDay:      make(map[string]int),
	}

	counts := map[string]*int{
		`SELECT COUNT(*) FROM articles`:   &stats.TotalArticles,
		`SELECT COUNT(*) FROM sources`:    &stats.TotalSources,
		`SELECT COUNT(*) FROM categories`: &stats.TotalCategories,
	}
	for query, dest := range counts {
		if err := s.db.QueryRowWithTimeout(ctx, query).Scan(dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	if err := s.scanCounts(ctx, `
		SELECT s.name, COUNT(a.id)
		FROM sources s
		LEFT JOIN articles a ON s.id = a.source_id
		GROUP BY s.id`, stats.ArticlesBySource); err != nil {
		return nil, err
	}

	if err := s.scanCounts(ctx, `
		SELECT c.name, COUNT(ac.article_id)
		FROM categories c
		LEFT JOIN article_categories ac ON c.id = ac.category_id
		GROUP BY c.id`, stats.ArticlesByCategory); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryWithTimeout(ctx, `
		SELECT substr(a.date, 1, 10) AS day, COUNT(*)
		FROM articles a
		WHERE a.date >= ?
		GROUP BY day
		ORDER BY day DESC`, dateCutoff(7))
	if err != nil {
		return nil, fmt.Errorf("failed to query articles by day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		stats.ArticlesByDay[day] = count
	}

	return stats, rows.Err()
}

func (s *StoreService) scanCounts(ctx context.Context, query string, dest map[string]int) error {
	rows, err := s.db.QueryWithTimeout(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		dest[name] = count
	}
	return rows.Err()
}

// scanArticles reads rows produced by articleSelect queries.
func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	var articles []models.Article
	for rows.Next() {
		var (
			a          models.Article
			date       sql.NullString
			author     sql.NullString
			summary    sql.NullString
			content    sql.NullString
			imageURL   sql.NullString
			categories sql.NullString
		)

		err := rows.Scan(
			&a.ID, &a.Title, &a.URL, &date, &author, &summary, &content, &imageURL,
			&a.ScrapedAt, &a.CreatedAt,
			&a.SourceID, &a.Source, &a.SourceURL,
			&categories,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		a.Date = date.String
		a.Author = author.String
		a.Summary = summary.String
		a.Content = content.String
		a.ImageURL = imageURL.String
		if categories.Valid && categories.String != "" {
			a.Categories = strings.Split(categories.String, ",")
		}

		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// dateCutoff formats now-minus-days the same way stored dates are
// formatted, so the text comparison in SQL orders correctly.
func dateCutoff(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02T15:04:05")
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
