package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"newswell/internal/core"
	"newswell/internal/ingest/services"

	"github.com/go-chi/chi/v5"
)

// Handlers contains the read-only HTTP handlers for ingested articles
type Handlers struct {
	logger    *core.Logger
	store     *services.StoreService
	scheduler *services.SchedulerService
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, store *services.StoreService, scheduler *services.SchedulerService) *Handlers {
	return &Handlers{
		logger:    logger,
		store:     store,
		scheduler: scheduler,
	}
}

// RegisterRoutes mounts the article API onto the given router
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/articles", h.ListRecentArticles)
	r.Get("/articles/lookup", h.GetArticleByURL)
	r.Get("/articles/category/{name}", h.ListArticlesByCategory)
	r.Get("/sources", h.ListSources)
	r.Get("/categories", h.ListCategories)
	r.Get("/stats", h.GetStatistics)
	r.Post("/ingest/run", h.TriggerIngestion)
}

// ListRecentArticles returns the most recent articles, newest first.
// Optional query params: limit (default 50), days (default 7).
func (h *Handlers) ListRecentArticles(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	days := queryInt(r, "days", 7)

	articles, err := h.store.GetRecentArticles(r.Context(), limit, days)
	if err != nil {
		h.logger.Error("Failed to list recent articles", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"articles": articles, "count": len(articles)})
}

// ListArticlesByCategory returns articles tagged with the named category
func (h *Handlers) ListArticlesByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		core.HandleError(w, core.NewValidationError("category name is required", nil))
		return
	}
	limit := queryInt(r, "limit", 50)

	articles, err := h.store.GetArticlesByCategory(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("Failed to list articles by category", "category", name, "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"articles": articles, "count": len(articles)})
}

// GetArticleByURL looks up a single article by its canonical URL
func (h *Handlers) GetArticleByURL(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		core.HandleError(w, core.NewValidationError("url query parameter is required", nil))
		return
	}

	article, err := h.store.GetArticleByURL(r.Context(), url)
	if err != nil {
		h.logger.Error("Failed to look up article", "url", url, "error", err)
		core.HandleError(w, err)
		return
	}
	if article == nil {
		core.HandleError(w, core.NewNotFoundError("article not found", nil))
		return
	}

	writeJSON(w, map[string]interface{}{"article": article})
}

// ListSources returns every source the store has ingested from
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	srcs, err := h.store.GetAllSources(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sources", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"sources": srcs, "count": len(srcs)})
}

// ListCategories returns all known category names
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.GetAllCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"categories": categories, "count": len(categories)})
}

// GetStatistics returns aggregate counts over the stored corpus
func (h *Handlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStatistics(r.Context())
	if err != nil {
		h.logger.Error("Failed to get statistics", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, stats)
}

// TriggerIngestion runs an ingestion cycle immediately and reports the
// outcome. The request blocks until the run finishes.
func (h *Handlers) TriggerIngestion(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		h.logger.Error("Manual ingestion run failed", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"report": report})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
