package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var articleColumns = []string{
	"a.id", "a.owner_id", "a.url", "a.title", "a.thumbnail_url", "a.source",
	"a.category_id", "c.name", "a.notes", "a.created_at", "a.updated_at",
}

type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var (
		a            Article
		url          sql.NullString
		thumbnail    sql.NullString
		categoryID   sql.NullString
		categoryName sql.NullString
		notes        sql.NullString
	)

	err := row.Scan(&a.ID, &a.OwnerID, &url, &a.Title, &thumbnail, &a.Source,
		&categoryID, &categoryName, &notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.URL = nullableString(url)
	a.ThumbnailURL = nullableString(thumbnail)
	a.CategoryID = nullableString(categoryID)
	a.CategoryName = nullableString(categoryName)
	a.Notes = nullableString(notes)

	return &a, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *ArticleRepo) selectArticles() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("articles a").
		LeftJoin("categories c ON c.id = a.category_id")
}

func (r *ArticleRepo) GetArticle(ctx context.Context, ownerID, id string) (*Article, error) {
	query, args, err := r.selectArticles().
		Where(sq.Eq{"a.owner_id": ownerID, "a.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) QueryArticles(ctx context.Context, q ArticleQuery) ([]Article, error) {
	builder := r.selectArticles().Where(sq.Eq{"a.owner_id": q.OwnerID})

	if q.CategoryID != "" {
		builder = builder.Where(sq.Eq{"a.category_id": q.CategoryID})
	}
	if q.Source != "" {
		builder = builder.Where(sq.Eq{"a.source": q.Source})
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(foldSearch(search)) + "%"
		builder = builder.Where(sq.Expr(`a.search_text LIKE ? ESCAPE '\'`, pattern))
	}
	if q.From != nil {
		builder = builder.Where(sq.GtOrEq{"a.created_at": q.From.UTC()})
	}
	if q.To != nil {
		builder = builder.Where(sq.LtOrEq{"a.created_at": q.To.UTC()})
	}

	if q.Ascending {
		builder = builder.OrderBy("a.created_at ASC", "a.rowid ASC")
	} else {
		builder = builder.OrderBy("a.created_at DESC", "a.rowid DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// searchSeparator keeps a search term from matching across field boundaries.
const searchSeparator = "\x1f"

// foldSearch case-folds text for matching. SQLite LIKE only ignores ASCII case.
func foldSearch(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func searchText(title string, url, notes *string) string {
	parts := []string{title, "", ""}
	if url != nil {
		parts[1] = *url
	}
	if notes != nil {
		parts[2] = *notes
	}
	return foldSearch(strings.Join(parts, searchSeparator))
}

func (r *ArticleRepo) CreateArticle(ctx context.Context, input ArticleInput) (*Article, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Source) == "" {
		return nil, fmt.Errorf("title and source are required: %w", ErrInvalidInput)
	}

	if input.CategoryID != nil {
		if err := r.checkCategoryOwner(ctx, input.OwnerID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	query, args, err := psql.Insert("articles").
		Columns("id", "owner_id", "url", "title", "thumbnail_url", "source",
			"category_id", "notes", "search_text", "created_at", "updated_at").
		Values(id, input.OwnerID, input.URL, input.Title, input.ThumbnailURL, input.Source,
			input.CategoryID, input.Notes, searchText(input.Title, input.URL, input.Notes), now, now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	article, err := r.GetArticle(ctx, input.OwnerID, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("failed to read back article %s: %w", id, ErrNotFound)
	}

	return article, nil
}

// UpdateArticle applies the fields present in patch to an owned article.
func (r *ArticleRepo) UpdateArticle(ctx context.Context, ownerID, id string, patch ArticlePatch) (*Article, error) {
	builder := psql.Update("articles").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"owner_id": ownerID, "id": id})

	if patch.Title.Set {
		if patch.Title.Value == nil || strings.TrimSpace(*patch.Title.Value) == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", ErrInvalidInput)
		}
		builder = builder.Set("title", *patch.Title.Value)
	}

	if patch.CategoryID.Set {
		if patch.CategoryID.Value != nil {
			if err := r.checkCategoryOwner(ctx, ownerID, *patch.CategoryID.Value); err != nil {
				return nil, err
			}
		}
		builder = builder.Set("category_id", patch.CategoryID.Value)
	}

	if patch.Notes.Set {
		builder = builder.Set("notes", patch.Notes.Value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article update: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	if err := refreshSearchText(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit article update: %w", err)
	}

	article, err := r.GetArticle(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}

	return article, nil
}

func refreshSearchText(ctx context.Context, tx *sql.Tx, id string) error {
	var (
		title string
		url   sql.NullString
		notes sql.NullString
	)
	err := tx.QueryRowContext(ctx, `SELECT title, url, notes FROM articles WHERE id = ?`, id).
		Scan(&title, &url, &notes)
	if err != nil {
		return fmt.Errorf("failed to read article for search index: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE articles SET search_text = ? WHERE id = ?`,
		searchText(title, nullableString(url), nullableString(notes)), id)
	if err != nil {
		return fmt.Errorf("failed to update search index: %w", err)
	}
	return nil
}

func (r *ArticleRepo) DeleteArticle(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM articles WHERE owner_id = ? AND id = ?
	`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ArticleRepo) GetStats(ctx context.Context, ownerID string) (*Stats, error) {
	stats := &Stats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles WHERE owner_id = ?
	`, ownerID).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	stats.ByCategory, err = r.countBy(ctx, `
		SELECT COALESCE(c.name, 'Unknown') AS label, COUNT(*) AS total
		FROM articles a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.owner_id = ?
		GROUP BY label
		ORDER BY total DESC, label ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles by category: %w", err)
	}

	stats.BySource, err = r.countBy(ctx, `
		SELECT COALESCE(NULLIF(source, ''), 'Unknown') AS label, COUNT(*) AS total
		FROM articles
		WHERE owner_id = ?
		GROUP BY label
		ORDER BY total DESC, label ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles by source: %w", err)
	}

	return stats, nil
}

func (r *ArticleRepo) countBy(ctx context.Context, query string, ownerID string) ([]CountEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]CountEntry, 0)
	for rows.Next() {
		var e CountEntry
		if err := rows.Scan(&e.Name, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *ArticleRepo) checkCategoryOwner(ctx context.Context, ownerID, categoryID string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM categories WHERE owner_id = ? AND id = ?
	`, ownerID, categoryID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrCategoryNotOwned
	}
	if err != nil {
		return fmt.Errorf("failed to check category owner: %w", err)
	}
	return nil
}
