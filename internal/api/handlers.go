package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/pitki/internal/database"
)

const healthTimeout = 2 * time.Second

func NewHandler(categoryRepo database.CategoryRepository, articleRepo database.ArticleRepository,
	db Pinger, version string) *Handler {
	return &Handler{
		categoryRepo: categoryRepo,
		articleRepo:  articleRepo,
		db:           db,
		version:      version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"database":  "ok",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		health["status"] = "unhealthy"
		health["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Pitki",
		"version":     h.version,
		"description": "Read-it-later article collector with a Telegram front-end",
		"endpoints": map[string]string{
			"health":     "/health",
			"metrics":    "/metrics",
			"categories": "/api/categories (requires X-User-ID header)",
			"articles":   "/api/articles?category&source&search&from_date&to_date&sort (requires X-User-ID header)",
			"stats":      "/api/stats (requires X-User-ID header)",
		},
	})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.categoryRepo.ListCategories(c.Request.Context(), owner(c))
	if err != nil {
		slog.Error("Database error", "operation", "list_categories", "owner_id", owner(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, newCategoryResponse(category))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	category, err := h.categoryRepo.CreateCategory(c.Request.Context(), owner(c), req.Name)
	switch {
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	case errors.Is(err, database.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "create_category", "owner_id", owner(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(*category))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	err := h.categoryRepo.DeleteCategory(c.Request.Context(), owner(c), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "delete_category", "owner_id", owner(c), "category_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *Handler) ListArticles(c *gin.Context) {
	query, err := parseArticleQuery(c, owner(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	articles, err := h.articleRepo.QueryArticles(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "query_articles", "owner_id", owner(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	resp := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		resp = append(resp, newArticleResponse(article))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Source) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and source are required"})
		return
	}

	input := database.ArticleInput{
		OwnerID:      owner(c),
		URL:          nonEmpty(req.URL),
		Title:        req.Title,
		ThumbnailURL: nonEmpty(req.ThumbnailURL),
		Source:       req.Source,
		CategoryID:   nonEmpty(req.CategoryID),
		Notes:        req.Notes,
	}

	article, err := h.articleRepo.CreateArticle(c.Request.Context(), input)
	if err != nil {
		h.writeArticleError(c, "create_article", "Failed to create article", err)
		return
	}

	c.JSON(http.StatusCreated, newArticleResponse(*article))
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	id := c.Param("id")

	patch, err := decodeArticlePatch(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	article, err := h.articleRepo.UpdateArticle(c.Request.Context(), owner(c), id, patch)
	if err != nil {
		h.writeArticleError(c, "update_article", "Failed to update article", err)
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(*article))
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id := c.Param("id")

	err := h.articleRepo.DeleteArticle(c.Request.Context(), owner(c), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "delete_article", "owner_id", owner(c), "article_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.articleRepo.GetStats(c.Request.Context(), owner(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "owner_id", owner(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	c.JSON(http.StatusOK, newStatsResponse(*stats))
}

func (h *Handler) writeArticleError(c *gin.Context, operation, message string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
	case errors.Is(err, database.ErrCategoryNotOwned):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
	case errors.Is(err, database.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Database error", "operation", operation, "owner_id", owner(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
