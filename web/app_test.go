package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/models"
)

const testPassword = "correct-horse-1"

type testServer struct {
	*httptest.Server
	app *app

	// posts stamps each new post one minute after the previous one.
	posts *database.PostService
}

type response struct {
	status int
	header http.Header
	body   string
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "blog.db")
	cfg.Templates.Minify = false
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := database.Open(context.Background(), cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app, err := newApp(cfg, db, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	app.UserService = app.UserService.WithCost(bcrypt.MinCost)

	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	clock := func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}

	return &testServer{
		Server: srv,
		app:    app,
		posts:  app.PostService.WithClock(clock),
	}
}

func (ts *testServer) newUser(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := ts.app.UserService.CreateUser(context.Background(), username, testPassword)
	require.NoError(t, err)
	return user
}

func (ts *testServer) newCategory(t *testing.T, name string) *models.Category {
	t.Helper()

	category, err := ts.app.CategoryService.CreateCategory(context.Background(), name, "", "")
	require.NoError(t, err)
	return category
}

func (ts *testServer) newPost(t *testing.T, title string, status models.Status, category *models.Category, author *models.User) *models.Post {
	t.Helper()

	post, err := ts.posts.CreatePost(context.Background(), models.PostInput{
		Title:      title,
		CategoryID: category.ID,
		Content:    "Content of " + title,
		Status:     status,
	}, author.ID)
	require.NoError(t, err)
	return post
}

// client returns a fresh browser: its own cookie jar, redirects not followed.
func (ts *testServer) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ts *testServer) loginAs(t *testing.T, username string) *http.Client {
	t.Helper()

	c := ts.client(t)
	res := ts.post(t, c, "/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, res.status)
	return c
}

func (ts *testServer) get(t *testing.T, c *http.Client, path string) response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	return ts.do(t, c, req)
}

func (ts *testServer) post(t *testing.T, c *http.Client, path string, form url.Values) response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, c, req)
}

func (ts *testServer) do(t *testing.T, c *http.Client, req *http.Request) response {
	t.Helper()

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return response{status: res.StatusCode, header: res.Header, body: string(body)}
}

func postLink(slug string) string {
	return fmt.Sprintf(`href="/%s/"`, slug)
}

func fmtInt(n int) string {
	return fmt.Sprint(n)
}
