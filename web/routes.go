package web

import (
	"net/http"
)

// reservedSlugs are first path segments taken by fixed routes; posts never
// get one of them as slug so /<slug>/ cannot shadow a page.
var reservedSlugs = []string{
	"register", "login", "logout", "dashboard", "create", "edit", "delete", "category", "feed",
}

func (app *app) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", app.home)
	mux.HandleFunc("GET /feed/{$}", app.feed)

	mux.HandleFunc("GET /register/{$}", app.register)
	mux.HandleFunc("POST /register/{$}", app.register)
	mux.HandleFunc("GET /login/{$}", app.requireGuest(app.login))
	mux.HandleFunc("POST /login/{$}", app.requireGuest(app.login))
	mux.HandleFunc("POST /logout/{$}", app.requireAuth(app.logout))

	mux.HandleFunc("GET /dashboard/{$}", app.requireAuth(app.dashboard))
	mux.HandleFunc("GET /create/{$}", app.requireAuth(app.createPost))
	mux.HandleFunc("POST /create/{$}", app.requireAuth(app.createPost))
	mux.HandleFunc("GET /edit/{slug}/{$}", app.requireAuth(app.editPost))
	mux.HandleFunc("POST /edit/{slug}/{$}", app.requireAuth(app.editPost))
	mux.HandleFunc("GET /delete/{slug}/{$}", app.requireAuth(app.deletePost))
	mux.HandleFunc("POST /delete/{slug}/{$}", app.requireAuth(app.deletePost))

	mux.HandleFunc("GET /category/{slug}/{$}", app.viewCategory)
	mux.HandleFunc("GET /{slug}/{$}", app.viewPost)

	return app.recoverPanic(app.logRequest(app.limitBody(app.authenticate(mux))))
}
