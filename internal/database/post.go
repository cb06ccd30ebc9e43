package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog/internal/models"
	"blog/internal/paginate"
	"blog/internal/slug"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostCreateFailed = errors.New("failed to create post")
	ErrPostUpdateFailed = errors.New("failed to update post")
	ErrPostDeleteFailed = errors.New("failed to delete post")
)

// maxSlugAttempts bounds the numbered suffixes tried for one title; after
// that a random token is appended instead.
const maxSlugAttempts = 100

const postColumns = `p.id, p.title, p.slug, p.category_id, p.content, p.status, p.user_id,
	p.created, p.updated, u.username, c.name, c.slug
	FROM posts p
	JOIN users u ON p.user_id = u.id
	JOIN categories c ON p.category_id = c.id`

// PostFilter narrows the public listing. Only published posts are ever
// listed; Query matches titles case-insensitively and CategoryID, when set,
// restricts to one category.
type PostFilter struct {
	Query      string
	CategoryID int
}

func (f PostFilter) where() (string, []any) {
	clauses := []string{"p.status = ?"}
	args := []any{string(models.StatusPublished)}

	if f.Query != "" {
		clauses = append(clauses, "instr(casefold(p.title), casefold(?)) > 0")
		args = append(args, f.Query)
	}
	if f.CategoryID != 0 {
		clauses = append(clauses, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// PostPage is one page of the public listing.
type PostPage struct {
	Posts []*models.Post
	Page  paginate.Page
}

type PostService struct {
	db       *Database
	perPage  int
	reserved map[string]bool
	now      func() time.Time
}

// NewPostService returns a post store. Slugs listed in reserved are never
// handed out, so posts cannot shadow fixed routes.
func NewPostService(db *Database, reserved ...string) *PostService {
	ps := &PostService{
		db:       db,
		perPage:  paginate.DefaultPerPage,
		reserved: make(map[string]bool, len(reserved)),
		now:      utcNow,
	}
	for _, s := range reserved {
		ps.reserved[s] = true
	}
	return ps
}

// WithClock returns a copy of the service stamping posts with now.
func (ps *PostService) WithClock(now func() time.Time) *PostService {
	cp := *ps
	cp.now = func() time.Time { return now().UTC() }
	return &cp
}

// CreatePost stores a new post. The slug comes from the title; when it is
// taken the UNIQUE index rejects the insert and the next suffix is tried, so
// an existing post is never overwritten. Once the numbered suffixes run out a
// random token is used until one is free.
func (ps *PostService) CreatePost(ctx context.Context, in models.PostInput, authorID int) (*models.Post, error) {
	now := ps.now()
	post := &models.Post{
		Title:      in.Title,
		CategoryID: in.CategoryID,
		Content:    in.Content,
		Status:     in.Status,
		AuthorID:   authorID,
		Created:    now,
		Updated:    now,
	}

	base := slug.Make(in.Title)
	for n := 1; ; n++ {
		candidate := slug.Candidate(base, n)
		if n > maxSlugAttempts {
			candidate = slug.Random(base)
		}
		if ps.reserved[candidate] {
			continue
		}

		taken, err := ps.insertPost(ctx, post, candidate)
		if err != nil {
			return nil, err
		}
		if !taken {
			return post, nil
		}
	}
}

// insertPost tries to store post under candidate. taken reports a slug
// collision; nothing is written in that case.
func (ps *PostService) insertPost(ctx context.Context, post *models.Post, candidate string) (taken bool, err error) {
	query := `INSERT INTO posts (title, slug, category_id, content, status, user_id, created, updated)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	err = ps.db.DBConn.QueryRowContext(ctx, query,
		post.Title, candidate, post.CategoryID, post.Content, string(post.Status),
		post.AuthorID, post.Created, post.Updated,
	).Scan(&post.ID)
	switch {
	case err == nil:
		post.Slug = candidate
		return false, nil
	case isUniqueViolation(err, "posts.slug"):
		return true, nil
	case isForeignKeyViolation(err):
		return false, ErrCategoryNotFound
	default:
		return false, fmt.Errorf("%w: %v", ErrPostCreateFailed, err)
	}
}

// GetPublishedPost returns the published post with the given slug. Drafts
// are reported as missing.
func (ps *PostService) GetPublishedPost(ctx context.Context, postSlug string) (*models.Post, error) {
	row := ps.db.DBConn.QueryRowContext(ctx,
		`SELECT `+postColumns+` WHERE p.slug = ? AND p.status = ?`,
		postSlug, string(models.StatusPublished))
	return scanPost(row)
}

// GetOwnedPost returns the post with the given slug only if authorID wrote
// it. A post owned by someone else is reported as missing.
func (ps *PostService) GetOwnedPost(ctx context.Context, postSlug string, authorID int) (*models.Post, error) {
	row := ps.db.DBConn.QueryRowContext(ctx,
		`SELECT `+postColumns+` WHERE p.slug = ? AND p.user_id = ?`,
		postSlug, authorID)
	return scanPost(row)
}

// PublishedPage returns one page of published posts, newest first.
func (ps *PostService) PublishedPage(ctx context.Context, filter PostFilter, rawPage string) (*PostPage, error) {
	where, args := filter.where()

	var count int
	err := ps.db.DBConn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := paginate.New(count, ps.perPage).Page(rawPage)

	posts, err := ps.queryPosts(ctx,
		`SELECT `+postColumns+where+` ORDER BY p.created DESC, p.id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Page: page}, nil
}

// LatestPublished returns up to limit published posts, newest first.
func (ps *PostService) LatestPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	return ps.queryPosts(ctx,
		`SELECT `+postColumns+` WHERE p.status = ? ORDER BY p.created DESC, p.id DESC LIMIT ?`,
		string(models.StatusPublished), limit)
}

// GetUserPosts returns every post of a user regardless of status, newest first.
func (ps *PostService) GetUserPosts(ctx context.Context, authorID int) ([]*models.Post, error) {
	return ps.queryPosts(ctx,
		`SELECT `+postColumns+` WHERE p.user_id = ? ORDER BY p.created DESC, p.id DESC`,
		authorID)
}

// UpdatePost changes the editable fields of a post owned by authorID. The
// slug is kept so existing links stay valid.
func (ps *PostService) UpdatePost(ctx context.Context, id, authorID int, in models.PostInput) error {
	query := `UPDATE posts SET title = ?, category_id = ?, content = ?, status = ?, updated = ?
			  WHERE id = ? AND user_id = ?`
	result, err := ps.db.DBConn.ExecContext(ctx, query,
		in.Title, in.CategoryID, in.Content, string(in.Status), ps.now(), id, authorID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("%w: %v", ErrPostUpdateFailed, err)
	}

	return expectOneRow(result)
}

// DeletePost deletes a post owned by authorID.
func (ps *PostService) DeletePost(ctx context.Context, id, authorID int) error {
	result, err := ps.db.DBConn.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND user_id = ?`, id, authorID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPostDeleteFailed, err)
	}

	return expectOneRow(result)
}

func (ps *PostService) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := ps.db.DBConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.CategoryID, &post.Content,
		&post.Status, &post.AuthorID, &post.Created, &post.Updated,
		&post.AuthorName, &post.CategoryName, &post.CategorySlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
