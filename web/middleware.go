package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps form submissions.
const maxBodyBytes = 1 << 20

const requestIDHeader = "X-Request-ID"

// requireAuth sends anonymous visitors to the login page, remembering where
// they were headed.
func (app *app) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// protected pages must not be cached
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if currentUser(r) == nil {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireGuest keeps logged-in users away from the login page.
func (app *app) requireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if currentUser(r) != nil {
			http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// authenticate resolves the session cookie once per request and stores the
// user in the request context.
func (app *app) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := app.getSessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := app.SessionService.GetUserBySession(r.Context(), token)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session rejected")
			app.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := zerolog.Ctx(r.Context()).With().Int("user_id", user.ID).Logger().WithContext(r.Context())
		next.ServeHTTP(w, r.WithContext(contextWithUser(ctx, user)))
	})
}

// logRequest gives every request an id and a child logger, then logs the
// outcome once the handler returns.
func (app *app) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		logger := app.logger.With().Str("request_id", requestID).Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// limitBody caps how much a client may upload.
func (app *app) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// recoverPanic turns a panicking handler into a 500 response.
func (app *app) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				w.Header().Set("Connection", "close")
				r = r.WithContext(app.logger.WithContext(r.Context()))
				app.ServerError(w, r, fmt.Errorf("panic: %v", rv))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
