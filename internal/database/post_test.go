package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"blog/internal/models"
	"blog/internal/slug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postFixture struct {
	db       *Database
	ps       *PostService
	alice    *models.User
	bob      *models.User
	news     *models.Category
	releases *models.Category
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()

	db := newTestDatabase(t)
	return &postFixture{
		db:       db,
		ps:       NewPostService(db, "dashboard", "feed").WithClock(stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		alice:    newTestUser(t, db, "alice"),
		bob:      newTestUser(t, db, "bob"),
		news:     newTestCategory(t, db, "News"),
		releases: newTestCategory(t, db, "Releases"),
	}
}

func (f *postFixture) create(t *testing.T, title string, status models.Status, category *models.Category, author *models.User) *models.Post {
	t.Helper()

	post, err := f.ps.CreatePost(context.Background(), models.PostInput{
		Title:      title,
		CategoryID: category.ID,
		Content:    "Body of " + title,
		Status:     status,
	}, author.ID)
	require.NoError(t, err)
	return post
}

func titles(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestCreatePostDerivesSlug(t *testing.T) {
	f := newPostFixture(t)

	post := f.create(t, "Hello, World!", models.StatusPublished, f.news, f.alice)
	assert.Equal(t, "hello-world", post.Slug)
	assert.NotZero(t, post.ID)
}

func TestCreatePostNeverOverwrites(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	first := f.create(t, "Same Title", models.StatusPublished, f.news, f.alice)
	second := f.create(t, "Same title!", models.StatusPublished, f.news, f.bob)
	third := f.create(t, "same   TITLE", models.StatusDraft, f.news, f.alice)

	assert.Equal(t, "same-title", first.Slug)
	assert.Equal(t, "same-title-2", second.Slug)
	assert.Equal(t, "same-title-3", third.Slug)

	got, err := f.ps.GetPublishedPost(ctx, "same-title")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "alice", got.AuthorName)
	assert.Equal(t, "Body of Same Title", got.Content)
}

func TestCreatePostBeyondNumberedSuffixes(t *testing.T) {
	f := newPostFixture(t)

	seen := map[string]bool{}
	var last *models.Post
	for i := 0; i < maxSlugAttempts+2; i++ {
		last = f.create(t, "Weekly Update", models.StatusPublished, f.news, f.alice)
		require.False(t, seen[last.Slug], last.Slug)
		seen[last.Slug] = true
	}

	assert.True(t, seen["weekly-update"])
	assert.True(t, seen["weekly-update-100"])
	assert.False(t, seen["weekly-update-101"])
	assert.True(t, strings.HasPrefix(last.Slug, "weekly-update-"))
	assert.True(t, slug.Valid(last.Slug), last.Slug)

	got, err := f.ps.GetPublishedPost(context.Background(), last.Slug)
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.ID)
}

func TestCreatePostSkipsReservedSlugs(t *testing.T) {
	f := newPostFixture(t)

	post := f.create(t, "Dashboard", models.StatusPublished, f.news, f.alice)
	assert.Equal(t, "dashboard-2", post.Slug)

	post = f.create(t, "???", models.StatusPublished, f.news, f.alice)
	assert.Equal(t, "post", post.Slug)
}

func TestCreatePostUnknownCategory(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.ps.CreatePost(context.Background(), models.PostInput{
		Title: "Orphan", CategoryID: 9999, Content: "x", Status: models.StatusDraft,
	}, f.alice.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGetPublishedPostHidesDrafts(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	draft := f.create(t, "Secret", models.StatusDraft, f.news, f.alice)

	_, err := f.ps.GetPublishedPost(ctx, draft.Slug)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.ps.GetPublishedPost(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestGetOwnedPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.create(t, "Mine", models.StatusDraft, f.news, f.alice)

	got, err := f.ps.GetOwnedPost(ctx, post.Slug, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "news", got.CategorySlug)

	_, err = f.ps.GetOwnedPost(ctx, post.Slug, f.bob.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.create(t, "Original", models.StatusDraft, f.news, f.alice)
	in := models.PostInput{Title: "Changed", CategoryID: f.releases.ID, Content: "new", Status: models.StatusPublished}

	assert.ErrorIs(t, f.ps.UpdatePost(ctx, post.ID, f.bob.ID, in), ErrPostNotFound)

	require.NoError(t, f.ps.UpdatePost(ctx, post.ID, f.alice.ID, in))

	got, err := f.ps.GetPublishedPost(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Title)
	assert.Equal(t, "original", got.Slug)
	assert.Equal(t, f.releases.ID, got.CategoryID)
	assert.True(t, got.Updated.After(got.Created))

	// published back to draft is allowed
	in.Status = models.StatusDraft
	require.NoError(t, f.ps.UpdatePost(ctx, post.ID, f.alice.ID, in))
	_, err = f.ps.GetPublishedPost(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post := f.create(t, "Doomed", models.StatusPublished, f.news, f.alice)

	assert.ErrorIs(t, f.ps.DeletePost(ctx, post.ID, f.bob.ID), ErrPostNotFound)
	require.NoError(t, f.ps.DeletePost(ctx, post.ID, f.alice.ID))
	assert.ErrorIs(t, f.ps.DeletePost(ctx, post.ID, f.alice.ID), ErrPostNotFound)

	_, err := f.ps.GetPublishedPost(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPublishedPagePagination(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		f.create(t, fmt.Sprintf("Post %02d", i), models.StatusPublished, f.news, f.alice)
	}
	f.create(t, "Hidden draft", models.StatusDraft, f.news, f.alice)

	page1, err := f.ps.PublishedPage(ctx, PostFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, 12, page1.Page.Count)
	assert.Equal(t, 3, page1.Page.NumPages)
	assert.Equal(t, []string{"Post 12", "Post 11", "Post 10", "Post 09", "Post 08"}, titles(page1.Posts))

	page2, err := f.ps.PublishedPage(ctx, PostFilter{}, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Post 07", "Post 06", "Post 05", "Post 04", "Post 03"}, titles(page2.Posts))

	page3, err := f.ps.PublishedPage(ctx, PostFilter{}, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"Post 02", "Post 01"}, titles(page3.Posts))

	clamped, err := f.ps.PublishedPage(ctx, PostFilter{}, "42")
	require.NoError(t, err)
	assert.Equal(t, 3, clamped.Page.Number)
	assert.Equal(t, titles(page3.Posts), titles(clamped.Posts))
}

func TestPublishedPageSearch(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	f.create(t, "Learning Go", models.StatusPublished, f.news, f.alice)
	f.create(t, "GOLANG tips", models.StatusPublished, f.news, f.alice)
	f.create(t, "Rust notes", models.StatusPublished, f.news, f.alice)
	f.create(t, "Go draft", models.StatusDraft, f.news, f.alice)
	other := f.create(t, "Cooking", models.StatusPublished, f.news, f.alice)
	require.NoError(t, f.ps.UpdatePost(ctx, other.ID, f.alice.ID, models.PostInput{
		Title: "Cooking", CategoryID: f.news.ID, Content: "go go go", Status: models.StatusPublished,
	}))

	result, err := f.ps.PublishedPage(ctx, PostFilter{Query: "go"}, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLANG tips", "Learning Go"}, titles(result.Posts))

	// whitespace is part of the needle
	result, err = f.ps.PublishedPage(ctx, PostFilter{Query: " go"}, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Learning Go"}, titles(result.Posts))

	result, err = f.ps.PublishedPage(ctx, PostFilter{Query: " "}, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust notes", "GOLANG tips", "Learning Go"}, titles(result.Posts))

	result, err = f.ps.PublishedPage(ctx, PostFilter{Query: "100%"}, "1")
	require.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, 1, result.Page.NumPages)
}

func TestPublishedPageCategory(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	f.create(t, "In news", models.StatusPublished, f.news, f.alice)
	f.create(t, "In releases", models.StatusPublished, f.releases, f.bob)
	f.create(t, "Draft in releases", models.StatusDraft, f.releases, f.bob)

	result, err := f.ps.PublishedPage(ctx, PostFilter{CategoryID: f.releases.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"In releases"}, titles(result.Posts))
}

func TestGetUserPostsAllStatuses(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	f.create(t, "First", models.StatusPublished, f.news, f.alice)
	f.create(t, "Theirs", models.StatusPublished, f.news, f.bob)
	f.create(t, "Second", models.StatusDraft, f.news, f.alice)

	posts, err := f.ps.GetUserPosts(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, titles(posts))

	posts, err = f.ps.GetUserPosts(ctx, 4242)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLatestPublished(t *testing.T) {
	f := newPostFixture(t)

	for i := 1; i <= 4; i++ {
		f.create(t, fmt.Sprintf("Entry %d", i), models.StatusPublished, f.news, f.alice)
	}
	f.create(t, "Unfinished", models.StatusDraft, f.news, f.alice)

	posts, err := f.ps.LatestPublished(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Entry 4", "Entry 3", "Entry 2"}, titles(posts))
}
