package services

import (
	"context"
	"log/slog"
	"testing"

	"newswell/internal/core"
	"newswell/internal/ingest/models"
)

func testLogger() *core.Logger {
	return core.NewLogger(slog.LevelError)
}

func TestNormalizeDate(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso with offset", "2023-04-10T10:00:00+00:00", "2023-04-10T10:00:00+00:00"},
		{"iso zulu", "2023-04-10T10:00:00Z", "2023-04-10T10:00:00+00:00"},
		{"iso no zone", "2023-04-10T10:00:00", "2023-04-10T10:00:00"},
		{"space separator", "2023-04-10 10:00:00", "2023-04-10T10:00:00"},
		{"rfc1123z", "Mon, 10 Apr 2023 10:00:00 +0000", "2023-04-10T10:00:00+00:00"},
		{"rfc1123", "Mon, 10 Apr 2023 10:00:00 GMT", "2023-04-10T10:00:00+00:00"},
		{"date only", "2023-04-10", "2023-04-10T00:00:00"},
		{"unparseable", "last tuesday", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.NormalizeDate(tt.in); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/post", "https://example.com/post"},
		{"http://example.com", "http://example.com"},
		{"ftp://example.com/file", ""},
		{"javascript:alert(1)", ""},
		{"/relative/path", ""},
		{"not a url at all", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := n.NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"html markup", "<p>hello <b>world</b></p>", "hello world"},
		{"entities", "ben &amp; jerry&#39;s", "ben & jerry's"},
		{"whitespace collapse", "  hello \n\t world  ", "hello world"},
		{"empty", "", ""},
		{"markup only", "<div></div>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategories(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	got := n.NormalizeCategories([]string{"AI", "ML", "AI", " ", "<em>Go</em>"})
	if len(got) != 3 {
		t.Fatalf("Expected 3 categories, got %d: %v", len(got), got)
	}

	seen := make(map[string]bool)
	for _, c := range got {
		seen[c] = true
	}
	for _, want := range []string{"AI", "ML", "Go"} {
		if !seen[want] {
			t.Errorf("Expected category %q in %v", want, got)
		}
	}

	if n.NormalizeCategories(nil) != nil {
		t.Error("Expected nil for empty input")
	}
	if n.NormalizeCategories([]string{"", "  "}) != nil {
		t.Error("Expected nil when every category cleans to empty")
	}
}

func TestNormalizeArticle(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	raw := models.RawArticle{
		Title:       "<b>Big &amp; Bold</b> News",
		URL:         "https://example.com/big-bold",
		Date:        "Mon, 10 Apr 2023 10:00:00 +0000",
		Author:      "Jane Doe",
		Description: "<p>A short description.</p>",
		Categories:  []string{"News", "News", "Tech"},
		ScrapedAt:   "2023-04-10T12:00:00Z",
		Source:      "Example Feed",
	}

	article := n.NormalizeArticle(context.Background(), raw)

	if article.Title != "Big & Bold News" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.URL != "https://example.com/big-bold" {
		t.Errorf("URL = %q", article.URL)
	}
	if article.Date != "2023-04-10T10:00:00+00:00" {
		t.Errorf("Date = %q", article.Date)
	}
	// Content falls back to the cleaned description when empty
	if article.Content != "A short description." {
		t.Errorf("Content = %q", article.Content)
	}
	if len(article.Categories) != 2 {
		t.Errorf("Categories = %v", article.Categories)
	}
	if article.Source != "Example Feed" {
		t.Errorf("Source = %q", article.Source)
	}
}

func TestNormalizeArticleMissingFieldsDefaulted(t *testing.T) {
	n := NewNormalizer(testLogger(), nil)

	article := n.NormalizeArticle(context.Background(), models.RawArticle{
		Title:  "No timestamps",
		URL:    "https://example.com/x",
		Source: "Example Feed",
	})

	if article.ScrapedAt == "" {
		t.Error("Expected scraped_at to be defaulted, got empty")
	}
	if article.Date != "" {
		t.Errorf("Expected empty date to stay empty, got %q", article.Date)
	}
}

// panickingSummarizer fails hard on one marker article so batch
// isolation can be observed.
type panickingSummarizer struct {
	marker string
}

func (p *panickingSummarizer) Summarize(ctx context.Context, content string) (string, error) {
	if content == p.marker {
		panic("summarizer blew up")
	}
	return "summary of " + content, nil
}

func TestNormalizeBatchSkipsFailingElement(t *testing.T) {
	n := NewNormalizer(testLogger(), &panickingSummarizer{marker: "poison"})

	raws := make([]models.RawArticle, 5)
	for i := range raws {
		raws[i] = models.RawArticle{
			Title:     "Article",
			URL:       "https://example.com/a",
			Content:   "fine",
			ScrapedAt: "2023-04-10T12:00:00Z",
			Source:    "Example Feed",
		}
	}
	raws[2].Content = "poison"

	articles := n.NormalizeBatch(context.Background(), raws)
	if len(articles) != 4 {
		t.Fatalf("Expected 4 articles after one failure, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Summary != "summary of fine" {
			t.Errorf("Summary = %q", a.Summary)
		}
	}
}

func TestNormalizeArticlePassesThroughOnFailure(t *testing.T) {
	n := NewNormalizer(testLogger(), &panickingSummarizer{marker: "poison"})

	raw := models.RawArticle{
		Title:     "Survivor",
		URL:       "https://example.com/s",
		Content:   "poison",
		ScrapedAt: "2023-04-10T12:00:00Z",
		Source:    "Example Feed",
	}

	article := n.NormalizeArticle(context.Background(), raw)
	if article.Title != "Survivor" {
		t.Errorf("Expected passthrough title, got %q", article.Title)
	}
	if article.URL != "https://example.com/s" {
		t.Errorf("Expected passthrough url, got %q", article.URL)
	}
}
