package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"blog/internal/database"
	"blog/internal/forms"
	"blog/internal/models"
)

func (app *app) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.RenderHTML(w, r, http.StatusOK, "register.page.html", &HTMLData{
			Title:        "Register",
			RegisterForm: &forms.RegisterForm{},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.ClientError(w, http.StatusBadRequest)
		return
	}

	log := zerolog.Ctx(r.Context())
	form := forms.NewRegisterForm(r.PostForm, app.UserService)

	creds, err := form.Validate(r.Context())
	if err == nil {
		_, err = app.UserService.CreateUser(r.Context(), creds.Username, creds.Password)
		if errors.Is(err, database.ErrUsernameExists) {
			// lost a race with another registration
			err = forms.Errors{"username": {forms.MsgUsernameTaken}}
		}
	}

	var invalid forms.Errors
	switch {
	case errors.As(err, &invalid):
		log.Info().Str("username", form.Username).Msg("registration rejected")
		app.RenderHTML(w, r, http.StatusUnprocessableEntity, "register.page.html", &HTMLData{
			Title:        "Register",
			RegisterForm: &forms.RegisterForm{Username: form.Username},
			Errors:       invalid,
		})
		return
	case err != nil:
		app.ServerError(w, r, err)
		return
	}

	log.Info().Str("username", creds.Username).Msg("user registered")
	http.Redirect(w, r, "/login/", http.StatusSeeOther)
}

func (app *app) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.RenderHTML(w, r, http.StatusOK, "login.page.html", &HTMLData{
			Title:     "Log in",
			LoginForm: &forms.LoginForm{},
			Next:      safeNext(r.URL.Query().Get("next"), ""),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.ClientError(w, http.StatusBadRequest)
		return
	}

	log := zerolog.Ctx(r.Context())
	form := forms.NewLoginForm(r.PostForm)
	next := safeNext(r.PostForm.Get("next"), "")

	creds, err := form.Validate(r.Context())
	if err == nil {
		var user *models.User
		user, err = app.UserService.VerifyUser(r.Context(), creds.Username, creds.Password)
		if errors.Is(err, database.ErrInvalidCredentials) {
			err = forms.Errors{"": {forms.MsgInvalidLogin}}
		}
		if err == nil {
			app.startSession(w, r, user, next)
			return
		}
	}

	var invalid forms.Errors
	if !errors.As(err, &invalid) {
		app.ServerError(w, r, err)
		return
	}

	log.Info().Str("username", form.Username).Msg("login rejected")
	app.RenderHTML(w, r, http.StatusUnprocessableEntity, "login.page.html", &HTMLData{
		Title:     "Log in",
		LoginForm: &forms.LoginForm{Username: form.Username},
		Next:      next,
		Errors:    invalid,
	})
}

func (app *app) startSession(w http.ResponseWriter, r *http.Request, user *models.User, next string) {
	session, err := app.SessionService.CreateSession(r.Context(), user.ID)
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	app.setSessionCookie(w, session.Token)
	zerolog.Ctx(r.Context()).Info().Int("user_id", user.ID).Msg("logged in")

	http.Redirect(w, r, safeNext(next, "/dashboard/"), http.StatusSeeOther)
}

func (app *app) logout(w http.ResponseWriter, r *http.Request) {
	if token := app.getSessionToken(r); token != "" {
		if err := app.SessionService.DeleteSession(r.Context(), token); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to delete session")
		}
	}

	app.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
