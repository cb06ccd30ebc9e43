package web

import (
	"net/http"
)

// dashboard lists every post of the current user, drafts included.
func (app *app) dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	posts, err := app.PostService.GetUserPosts(r.Context(), user.ID)
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	app.RenderHTML(w, r, http.StatusOK, "dashboard.page.html", &HTMLData{
		Title: "Dashboard",
		Posts: posts,
	})
}
