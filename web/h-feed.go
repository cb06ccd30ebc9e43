package web

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// feed serves the latest published posts as Atom. The ETag is a hash of the
// minified document, so conditional requests are answered with 304 until a
// post changes.
func (app *app) feed(w http.ResponseWriter, r *http.Request) {
	posts, err := app.PostService.LatestPublished(r.Context(), app.cfg.Feed.Entries)
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	var updated time.Time
	for _, p := range posts {
		if p.Updated.After(updated) {
			updated = p.Updated
		}
	}

	ts, err := app.templates.feedTemplate()
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := ts.Execute(&buf, feedData{
		Title:   app.cfg.Feed.Title,
		BaseURL: strings.TrimSuffix(app.cfg.Feed.BaseURL, "/"),
		Updated: updated,
		Posts:   posts,
	}); err != nil {
		app.ServerError(w, r, err)
		return
	}

	body, err := app.templates.minify(mimeAtom, buf.Bytes())
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeAtom+"; charset=utf-8")
	w.Header().Set("ETag", feedETag(body))
	http.ServeContent(w, r, "feed.xml", updated, bytes.NewReader(body))
}

func feedETag(body []byte) string {
	d := make([]byte, 8)
	binary.BigEndian.PutUint64(d, xxhash.Sum64(body))
	return `"` + base64.StdEncoding.EncodeToString(d) + `"`
}
