package web

import (
	"bytes"
	encxml "encoding/xml"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/russross/blackfriday/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/xml"

	"blog/internal/config"
	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/paginate"
	"blog/ui"
)

const (
	layoutFile   = "base.layout.html"
	partialGlob  = "*.partial.html"
	feedFile     = "feed.xml"
	mimeHTML     = "text/html"
	mimeAtom     = "application/atom+xml"
	excerptLimit = 200
)

type HTMLData struct {
	Title       string
	Path        string
	CurrentUser *models.User
	Errors      forms.Errors

	PostForm     *forms.PostForm
	RegisterForm *forms.RegisterForm
	LoginForm    *forms.LoginForm
	Next         string

	Post       *models.Post
	Posts      []*models.Post
	Page       *paginate.Page
	Query      string
	Category   *models.Category
	Categories []*models.Category
	Statuses   []models.Status
}

// feedData feeds the Atom template.
type feedData struct {
	Title   string
	BaseURL string
	Updated time.Time
	Posts   []*models.Post
}

// renderMarkdown turns post content into HTML. Raw HTML in the source is
// dropped and javascript: style links are neutralised.
func renderMarkdown(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
	return string(blackfriday.Run([]byte(src), blackfriday.WithRenderer(renderer)))
}

func excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace) + "…"
}

// pageURL links to page n of a listing, keeping the search query.
func pageURL(path, query string, n int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", strconv.Itoa(n))
	return path + "?" + v.Encode()
}

var functions = template.FuncMap{
	"cap": func(str string) string {
		if str == "" {
			return ""
		}
		runes := []rune(str)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"markdown": func(src string) template.HTML {
		return template.HTML(renderMarkdown(src))
	},
	"excerpt": func(s string) string {
		return excerpt(s, excerptLimit)
	},
	"pageURL": pageURL,
}

var feedFunctions = texttemplate.FuncMap{
	// characters XML cannot carry become U+FFFD
	"xmlescape": func(s string) (string, error) {
		var b strings.Builder
		if err := encxml.EscapeText(&b, []byte(s)); err != nil {
			return "", err
		}
		return b.String(), nil
	},
	"timefmt": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	"markdown": renderMarkdown,
}

// templateCache parses each page once. When templates are read from disk a
// watcher drops the cache on every change so edits show up without a restart.
type templateCache struct {
	fsys     fs.FS
	minifier *minify.M
	minifyOn bool
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
	feed  *texttemplate.Template
}

func newTemplateCache(cfg config.Templates, logger zerolog.Logger) (*templateCache, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add(mimeHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.Add(mimeAtom, &xml.Minifier{})

	tc := &templateCache{
		fsys:     ui.Templates(),
		minifier: m,
		minifyOn: cfg.Minify,
		logger:   logger,
		pages:    make(map[string]*template.Template),
	}

	if cfg.Dir == "" {
		return tc, nil
	}

	tc.fsys = os.DirFS(cfg.Dir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("template watcher: %w", err)
	}
	if err := watcher.Add(cfg.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}
	tc.watcher = watcher

	go tc.watch()

	logger.Info().Str("dir", cfg.Dir).Msg("serving templates from disk")
	return tc, nil
}

func (tc *templateCache) watch() {
	for {
		select {
		case ev, ok := <-tc.watcher.Events:
			if !ok {
				return
			}
			tc.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("template changed")
			tc.reset()
		case err, ok := <-tc.watcher.Errors:
			if !ok {
				return
			}
			tc.logger.Error().Err(err).Msg("template watcher error")
		}
	}
}

func (tc *templateCache) reset() {
	tc.mu.Lock()
	tc.pages = make(map[string]*template.Template)
	tc.feed = nil
	tc.mu.Unlock()
}

func (tc *templateCache) Close() error {
	if tc.watcher == nil {
		return nil
	}
	return tc.watcher.Close()
}

func (tc *templateCache) page(name string) (*template.Template, error) {
	tc.mu.RLock()
	ts, ok := tc.pages[name]
	tc.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ts, err := template.New(name).Funcs(functions).ParseFS(tc.fsys, layoutFile, partialGlob, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	tc.mu.Lock()
	tc.pages[name] = ts
	tc.mu.Unlock()
	return ts, nil
}

func (tc *templateCache) feedTemplate() (*texttemplate.Template, error) {
	tc.mu.RLock()
	ts := tc.feed
	tc.mu.RUnlock()
	if ts != nil {
		return ts, nil
	}

	ts, err := texttemplate.New(feedFile).Funcs(feedFunctions).ParseFS(tc.fsys, feedFile)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedFile, err)
	}

	tc.mu.Lock()
	tc.feed = ts
	tc.mu.Unlock()
	return ts, nil
}

func (tc *templateCache) minify(mime string, src []byte) ([]byte, error) {
	if !tc.minifyOn {
		return src, nil
	}
	return tc.minifier.Bytes(mime, src)
}

// RenderHTML executes the base layout with the given page and writes it with
// status. Nothing is written if rendering fails.
func (app *app) RenderHTML(w http.ResponseWriter, r *http.Request, status int, page string, data *HTMLData) {
	if data == nil {
		data = &HTMLData{}
	}

	data.Path = r.URL.Path
	if data.CurrentUser == nil {
		data.CurrentUser = currentUser(r)
	}
	if data.Errors == nil {
		data.Errors = forms.Errors{}
	}

	ts, err := app.templates.page(page)
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.ServerError(w, r, err)
		return
	}

	body, err := app.templates.minify(mimeHTML, buf.Bytes())
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
