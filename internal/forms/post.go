package forms

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"unicode/utf8"

	"blog/internal/models"
)

// MaxTitleLength bounds post titles, in characters.
const MaxTitleLength = 200

// CategoryFinder resolves the category a post is filed under.
type CategoryFinder interface {
	CategoryExists(ctx context.Context, id int) (bool, error)
}

// PostForm holds the raw title, category, content and status fields shared
// by the create and edit pages.
type PostForm struct {
	Title    string
	Category string
	Content  string
	Status   string

	categories CategoryFinder
}

var _ Validator[models.PostInput] = (*PostForm)(nil)

// NewPostForm reads a submitted post form.
func NewPostForm(values url.Values, categories CategoryFinder) *PostForm {
	return &PostForm{
		Title:      clean(values, "title"),
		Category:   clean(values, "category"),
		Content:    clean(values, "content"),
		Status:     clean(values, "status"),
		categories: categories,
	}
}

// PostFormFor pre-fills the form from an existing post.
func PostFormFor(post *models.Post) *PostForm {
	return &PostForm{
		Title:    post.Title,
		Category: strconv.Itoa(post.CategoryID),
		Content:  post.Content,
		Status:   string(post.Status),
	}
}

// EmptyPostForm is the blank create form, defaulting to a draft.
func EmptyPostForm() *PostForm {
	return &PostForm{Status: string(models.StatusDraft)}
}

// Validate returns the cleaned post fields or an Errors value.
func (f *PostForm) Validate(ctx context.Context) (models.PostInput, error) {
	errs := Errors{}
	var in models.PostInput

	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		errs.Add("title", msgRequired)
	case n > MaxTitleLength:
		errs.Add("title", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxTitleLength, n))
	default:
		in.Title = f.Title
	}

	if f.Category == "" {
		errs.Add("category", msgRequired)
	} else if id, err := strconv.Atoi(f.Category); err != nil || id <= 0 {
		errs.Add("category", MsgInvalidChoice)
	} else {
		ok, err := f.categoryExists(ctx, id)
		if err != nil {
			return models.PostInput{}, fmt.Errorf("look up category %d: %w", id, err)
		}
		if !ok {
			errs.Add("category", MsgInvalidChoice)
		}
		in.CategoryID = id
	}

	if f.Content == "" {
		errs.Add("content", msgRequired)
	} else {
		in.Content = f.Content
	}

	status := models.Status(f.Status)
	switch {
	case f.Status == "":
		errs.Add("status", msgRequired)
	case !status.Valid():
		errs.Add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", f.Status))
	default:
		in.Status = status
	}

	if err := errs.orNil(); err != nil {
		return models.PostInput{}, err
	}
	return in, nil
}

func (f *PostForm) categoryExists(ctx context.Context, id int) (bool, error) {
	if f.categories == nil {
		return false, nil
	}
	return f.categories.CategoryExists(ctx, id)
}
