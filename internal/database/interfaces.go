package database

import "context"

type CategoryRepository interface {
	ListCategories(ctx context.Context, ownerID string) ([]Category, error)
	GetCategory(ctx context.Context, ownerID, id string) (*Category, error)
	GetCategoryByName(ctx context.Context, ownerID, name string) (*Category, error)

	CreateCategory(ctx context.Context, ownerID, name string) (*Category, error)
	SeedCategories(ctx context.Context, ownerID string, names []string) (int, error)
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

type ArticleRepository interface {
	GetArticle(ctx context.Context, ownerID, id string) (*Article, error)
	QueryArticles(ctx context.Context, query ArticleQuery) ([]Article, error)
	GetStats(ctx context.Context, ownerID string) (*Stats, error)

	CreateArticle(ctx context.Context, input ArticleInput) (*Article, error)
	UpdateArticle(ctx context.Context, ownerID, id string, patch ArticlePatch) (*Article, error)
	DeleteArticle(ctx context.Context, ownerID, id string) error
}
