package api

import (
	"context"
	"time"

	"github.com/lysyi3m/pitki/internal/database"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	categoryRepo database.CategoryRepository
	articleRepo  database.ArticleRepository
	db           Pinger
	version      string
}

type categoryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type articleCategory struct {
	Name string `json:"name"`
}

type articleResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	URL          *string          `json:"url"`
	Title        string           `json:"title"`
	ThumbnailURL *string          `json:"thumbnail_url"`
	Source       string           `json:"source"`
	CategoryID   *string          `json:"category_id"`
	Notes        *string          `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Categories   *articleCategory `json:"categories"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type sourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type statsResponse struct {
	TotalArticles int             `json:"total_articles"`
	ByCategory    []categoryCount `json:"by_category"`
	BySource      []sourceCount   `json:"by_source"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createArticleRequest struct {
	URL          *string `json:"url"`
	Title        string  `json:"title"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Source       string  `json:"source"`
	CategoryID   *string `json:"category_id"`
	Notes        *string `json:"notes"`
}

func newCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

func newArticleResponse(a database.Article) articleResponse {
	resp := articleResponse{
		ID:           a.ID,
		UserID:       a.OwnerID,
		URL:          a.URL,
		Title:        a.Title,
		ThumbnailURL: a.ThumbnailURL,
		Source:       a.Source,
		CategoryID:   a.CategoryID,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.CategoryName != nil {
		resp.Categories = &articleCategory{Name: *a.CategoryName}
	}
	return resp
}

func newStatsResponse(s database.Stats) statsResponse {
	resp := statsResponse{
		TotalArticles: s.Total,
		ByCategory:    make([]categoryCount, 0, len(s.ByCategory)),
		BySource:      make([]sourceCount, 0, len(s.BySource)),
	}
	for _, e := range s.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryCount{Category: e.Name, Count: e.Count})
	}
	for _, e := range s.BySource {
		resp.BySource = append(resp.BySource, sourceCount{Source: e.Name, Count: e.Count})
	}
	return resp
}
