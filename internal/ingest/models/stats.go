package models

// Statistics holds aggregate counts over the whole store. Sources and
// categories with zero linked articles still appear with a count of 0.
type Statistics struct {
	TotalArticles      int            `json:"total_articles"`
	TotalSources       int            `json:"total_sources"`
	TotalCategories    int            `json:"total_categories"`
	ArticlesBySource   map[string]int `json:"articles_by_source"`
	ArticlesByCategory map[string]int `json:"articles_by_category"`
	ArticlesByDay      map[string]int `json:"articles_by_day"`
}
