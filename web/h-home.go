package web

import (
	"net/http"

	"blog/internal/database"
)

// home lists published posts, newest first, optionally narrowed by a title
// search in ?q=. Any non-empty q filters, whitespace included.
func (app *app) home(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	pp, err := app.PostService.PublishedPage(r.Context(), database.PostFilter{Query: query}, r.URL.Query().Get("page"))
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	title := "Latest posts"
	if query != "" {
		title = "Search: " + query
	}

	app.RenderHTML(w, r, http.StatusOK, "home.page.html", &HTMLData{
		Title: title,
		Posts: pp.Posts,
		Page:  &pp.Page,
		Query: query,
	})
}
