package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"blog/internal/models"
)

const SessionCookieName = "session_token"

type contextKey string

const userContextKey = contextKey("user")

func contextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// currentUser returns the authenticated user, or nil for anonymous visitors.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// setSessionCookie stores the session token in the browser
func (app *app) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(app.SessionService.Lifetime().Seconds()),
		HttpOnly: true,
		Secure:   app.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie tells the browser to drop the session cookie
func (app *app) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   app.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// getSessionToken reads the session token from the request cookie
func (app *app) getSessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func loginURL(next string) string {
	return "/login/?" + url.Values{"next": {next}}.Encode()
}

// safeNext returns next when it is a path on this site, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
