package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var _ CategoryRepository = (*CategoryRepo)(nil)

type CategoryRepo struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// NormalizeCategoryName trims the name and folds it to NFC so visually equal
// names collide on the unique index.
func NormalizeCategoryName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (r *CategoryRepo) ListCategories(ctx context.Context, ownerID string) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, created_at
		FROM categories
		WHERE owner_id = ?
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepo) GetCategory(ctx context.Context, ownerID, id string) (*Category, error) {
	return r.getOne(ctx, `
		SELECT id, owner_id, name, created_at
		FROM categories
		WHERE owner_id = ? AND id = ?
	`, ownerID, id)
}

func (r *CategoryRepo) GetCategoryByName(ctx context.Context, ownerID, name string) (*Category, error) {
	return r.getOne(ctx, `
		SELECT id, owner_id, name, created_at
		FROM categories
		WHERE owner_id = ? AND name = ?
	`, ownerID, NormalizeCategoryName(name))
}

func (r *CategoryRepo) getOne(ctx context.Context, query string, args ...any) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) CreateCategory(ctx context.Context, ownerID, name string) (*Category, error) {
	name = NormalizeCategoryName(name)
	if name == "" {
		return nil, fmt.Errorf("category name is empty: %w", ErrInvalidInput)
	}

	c := Category{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.OwnerID, c.Name, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

// SeedCategories inserts the given names for the owner, skipping names that
// already exist. Returns the number of categories actually created.
func (r *CategoryRepo) SeedCategories(ctx context.Context, ownerID string, names []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	now := time.Now().UTC()
	for _, name := range names {
		name = NormalizeCategoryName(name)
		if name == "" {
			continue
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, owner_id, name, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (owner_id, name) DO NOTHING
		`, uuid.NewString(), ownerID, name, now)
		if err != nil {
			return 0, fmt.Errorf("failed to seed category %q: %w", name, err)
		}

		if n, err := result.RowsAffected(); err == nil {
			created += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seeded categories: %w", err)
	}

	return created, nil
}

// DeleteCategory removes an owned category. Articles filed under it become
// uncategorized.
func (r *CategoryRepo) DeleteCategory(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE articles SET category_id = NULL
		WHERE owner_id = ? AND category_id = ?
	`, ownerID, id); err != nil {
		return fmt.Errorf("failed to detach articles: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM categories WHERE owner_id = ? AND id = ?
	`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category deletion: %w", err)
	}

	return nil
}
