package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
)

// CreateCategory inserts a category.
func (s *SQLStorage) CreateCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(cat.Name, "category name"); err != nil {
		return err
	}
	if _, err := model.ParseCategoryType(string(cat.Type)); err != nil {
		return err
	}

	_, err := s.exec(ctx, `
		INSERT INTO categories (id, user_id, name, type)
		VALUES (?, ?, ?, ?)`,
		cat.ID, cat.UserID, cat.Name, string(cat.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", cat.Name, err)
	}
	return nil
}

// GetCategory returns a category by id.
func (s *SQLStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "category id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.queryRow(ctx, `
		SELECT id, user_id, name, type
		FROM categories
		WHERE id = ?`, id,
	).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// GetCategoryByName returns the named category owned by userID.
func (s *SQLStorage) GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "category name"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.queryRow(ctx, `
		SELECT id, user_id, name, type
		FROM categories
		WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, user_id, name, type
		FROM categories
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// DeleteCategory removes a category. Transactions keep their rows with the
// category cleared; a category still referenced by a budget item cannot be
// deleted.
func (s *SQLStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "category id"); err != nil {
		return err
	}

	res, err := s.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return rowsAffected(res, "category", id)
}
