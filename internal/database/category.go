package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"blog/internal/models"
	"blog/internal/slug"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("a category with that name already exists")
	ErrSlugExists           = errors.New("a category with that slug already exists")
	ErrEmptyCategoryName    = errors.New("category name must not be empty")
	ErrLongCategoryName     = errors.New("category name must be at most 100 characters")
	ErrEmptySlug            = errors.New("slug must not be empty")
	ErrLongSlug             = errors.New("slug must be at most 100 characters")
	ErrInvalidSlug          = errors.New("slug may only contain lowercase letters, digits and hyphens")
	ErrLongDescription      = errors.New("description must be at most 500 characters")
	ErrCategoryCreateFailed = errors.New("failed to create category")
	ErrCategoryDeleteFailed = errors.New("failed to delete category")
)

var categorySlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

const categoryColumns = `id, name, slug, description, created`

type CategoryService struct {
	db *Database
}

func NewCategoryService(db *Database) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategory creates a category. An empty slug is derived from the name.
func (cs *CategoryService) CreateCategory(ctx context.Context, name, categorySlug, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	categorySlug = strings.TrimSpace(categorySlug)
	description = strings.TrimSpace(description)
	if categorySlug == "" {
		categorySlug = strings.ReplaceAll(slug.Make(name), "_", "-")
	}

	if err := cs.validateCategoryData(name, categorySlug, description); err != nil {
		return nil, err
	}

	if err := cs.checkCategoryUniqueness(ctx, name, categorySlug); err != nil {
		return nil, err
	}

	query := `INSERT INTO categories (name, slug, description, created) VALUES (?, ?, ?, ?) RETURNING id`

	category := models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: description,
		Created:     utcNow(),
	}

	err := cs.db.DBConn.QueryRowContext(ctx, query, name, categorySlug, description, category.Created).Scan(&category.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err, "categories.name"):
			return nil, ErrCategoryExists
		case isUniqueViolation(err, "categories.slug"):
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("%w: %v", ErrCategoryCreateFailed, err)
	}

	return &category, nil
}

// GetCategory loads a category by ID.
func (cs *CategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	row := cs.db.DBConn.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetCategoryBySlug loads a category by slug.
func (cs *CategoryService) GetCategoryBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	row := cs.db.DBConn.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, categorySlug)
	return scanCategory(row)
}

// GetAllCategories lists categories by name.
func (cs *CategoryService) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := cs.db.DBConn.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// DeleteCategory deletes a category by slug together with its posts.
func (cs *CategoryService) DeleteCategory(ctx context.Context, categorySlug string) error {
	result, err := cs.db.DBConn.ExecContext(ctx, `DELETE FROM categories WHERE slug = ?`, categorySlug)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCategoryDeleteFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// checkCategoryUniqueness checks name and slug before inserting
func (cs *CategoryService) checkCategoryUniqueness(ctx context.Context, name, categorySlug string) error {
	var exists int

	err := cs.db.DBConn.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name = ?`, name).Scan(&exists)
	if !errors.Is(err, sql.ErrNoRows) {
		if err == nil {
			return ErrCategoryExists
		}
		return fmt.Errorf("check category name uniqueness: %w", err)
	}

	err = cs.db.DBConn.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE slug = ?`, categorySlug).Scan(&exists)
	if !errors.Is(err, sql.ErrNoRows) {
		if err == nil {
			return ErrSlugExists
		}
		return fmt.Errorf("check category slug uniqueness: %w", err)
	}

	return nil
}

func (cs *CategoryService) validateCategoryData(name, categorySlug, description string) error {
	if len(name) == 0 {
		return ErrEmptyCategoryName
	}
	if len([]rune(name)) > 100 {
		return ErrLongCategoryName
	}

	if len(categorySlug) == 0 {
		return ErrEmptySlug
	}
	if len(categorySlug) > 100 {
		return ErrLongSlug
	}
	if !categorySlugPattern.MatchString(categorySlug) {
		return ErrInvalidSlug
	}

	if len([]rune(description)) > 500 {
		return ErrLongDescription
	}
	return nil
}

// CategoryExists reports whether a category with the given ID exists.
func (cs *CategoryService) CategoryExists(ctx context.Context, id int) (bool, error) {
	_, err := cs.GetCategory(ctx, id)
	if errors.Is(err, ErrCategoryNotFound) {
		return false, nil
	}
	return err == nil, err
}
