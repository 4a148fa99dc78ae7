// Package categories provides test infrastructure for seeding categories.
//
// Example usage:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithExpense("Dining")
//	})
package categories

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/google/uuid"
)

// Store is the subset of the entity store needed to create categories.
type Store interface {
	CreateCategory(ctx context.Context, category *model.Category) error
}

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithIncome adds an income category.
	WithIncome(name CategoryName) Builder

	// WithExpense adds an expense category.
	WithExpense(name CategoryName) Builder

	// WithBasicCategories adds the demo data set's categories.
	WithBasicCategories() Builder

	// Build creates the categories for userID and returns them sorted by name.
	Build(ctx context.Context, store Store, userID string) (Categories, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategorySalary    CategoryName = "Salary"
	CategoryGroceries CategoryName = "Groceries"
	CategoryRent      CategoryName = "Rent"
	CategoryUtilities CategoryName = "Utilities"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t          *testing.T
	categories map[CategoryName]model.CategoryType
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:          t,
		categories: make(map[CategoryName]model.CategoryType),
	}
}

func (b *categoryBuilder) WithIncome(name CategoryName) Builder {
	b.categories[name] = model.CategoryTypeIncome
	return b
}

func (b *categoryBuilder) WithExpense(name CategoryName) Builder {
	b.categories[name] = model.CategoryTypeExpense
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithIncome(CategorySalary).
		WithExpense(CategoryGroceries).
		WithExpense(CategoryRent).
		WithExpense(CategoryUtilities)
}

func (b *categoryBuilder) Build(ctx context.Context, store Store, userID string) (Categories, error) {
	b.t.Helper()

	names := make([]CategoryName, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	result := make(Categories, 0, len(names))
	for _, name := range names {
		cat := model.Category{
			ID:     uuid.NewString(),
			UserID: userID,
			Name:   name.String(),
			Type:   b.categories[name],
		}
		if err := store.CreateCategory(ctx, &cat); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		result = append(result, cat)
	}
	return result, nil
}
