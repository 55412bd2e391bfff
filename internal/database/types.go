package database

import (
	"time"
)

type Category struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

type Article struct {
	ID           string
	OwnerID      string
	URL          *string
	Title        string
	ThumbnailURL *string
	Source       string
	CategoryID   *string
	CategoryName *string // joined from categories, nil when uncategorized
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ArticleInput struct {
	OwnerID      string
	URL          *string
	Title        string
	ThumbnailURL *string
	Source       string
	CategoryID   *string
	Notes        *string
}

// Field is an optional patch value. Set distinguishes an absent field from
// an explicit null (Set with a nil Value).
type Field[T any] struct {
	Set   bool
	Value *T
}

func SetField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

func NullField[T any]() Field[T] {
	return Field[T]{Set: true}
}

type ArticlePatch struct {
	Title      Field[string]
	CategoryID Field[string]
	Notes      Field[string]
}

func (p ArticlePatch) IsEmpty() bool {
	return !p.Title.Set && !p.CategoryID.Set && !p.Notes.Set
}

type ArticleQuery struct {
	OwnerID    string
	CategoryID string
	Source     string
	Search     string
	From       *time.Time
	To         *time.Time
	Ascending  bool
}

type CountEntry struct {
	Name  string
	Count int
}

type Stats struct {
	Total      int
	ByCategory []CountEntry
	BySource   []CountEntry
}
