package web

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

func (app *app) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("stack", string(debug.Stack())).
		Msg("internal server error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (app *app) ClientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

// NotFound is used for missing posts and categories and for posts owned by
// someone else alike.
func (app *app) NotFound(w http.ResponseWriter) {
	app.ClientError(w, http.StatusNotFound)
}

// stdLogger adapts the zerolog logger for http.Server's error log.
func stdLogger(logger zerolog.Logger) *log.Logger {
	return log.New(logger.With().Str("component", "http").Logger(), "", 0)
}
