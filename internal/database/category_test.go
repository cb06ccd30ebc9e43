package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	db := newTestDatabase(t)
	cs := NewCategoryService(db)
	ctx := context.Background()

	category, err := cs.CreateCategory(ctx, "Go Tips", "", "Small things")
	require.NoError(t, err)
	assert.Equal(t, "go-tips", category.Slug)

	got, err := cs.GetCategoryBySlug(ctx, "go-tips")
	require.NoError(t, err)
	assert.Equal(t, category.ID, got.ID)
	assert.Equal(t, "Small things", got.Description)

	got, err = cs.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Tips", got.Name)
}

func TestCreateCategoryValidation(t *testing.T) {
	db := newTestDatabase(t)
	cs := NewCategoryService(db)
	ctx := context.Background()

	_, err := cs.CreateCategory(ctx, "News", "news", "")
	require.NoError(t, err)

	tests := []struct {
		name, slug, description string
		want                    error
	}{
		{"", "x", "", ErrEmptyCategoryName},
		{strings.Repeat("n", 101), "x", "", ErrLongCategoryName},
		{"!!!", "", "", ErrEmptySlug},
		{"Valid", strings.Repeat("s", 101), "", ErrLongSlug},
		{"Valid", "Bad Slug", "", ErrInvalidSlug},
		{"Valid", "valid", strings.Repeat("d", 501), ErrLongDescription},
		{"News", "other", "", ErrCategoryExists},
		{"Other", "news", "", ErrSlugExists},
	}

	for _, tt := range tests {
		t.Run(tt.want.Error(), func(t *testing.T) {
			_, err := cs.CreateCategory(ctx, tt.name, tt.slug, tt.description)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetAllAndDeleteCategories(t *testing.T) {
	db := newTestDatabase(t)
	cs := NewCategoryService(db)
	ctx := context.Background()

	newTestCategory(t, db, "Zebra")
	newTestCategory(t, db, "Apple")

	categories, err := cs.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Apple", categories[0].Name)

	require.NoError(t, cs.DeleteCategory(ctx, "apple"))
	assert.ErrorIs(t, cs.DeleteCategory(ctx, "apple"), ErrCategoryNotFound)

	_, err = cs.GetCategoryBySlug(ctx, "apple")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
