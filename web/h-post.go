package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"blog/internal/database"
	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/slug"
)

func (app *app) viewPost(w http.ResponseWriter, r *http.Request) {
	postSlug := r.PathValue("slug")
	if !slug.Valid(postSlug) {
		app.NotFound(w)
		return
	}

	post, err := app.PostService.GetPublishedPost(r.Context(), postSlug)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			app.NotFound(w)
			return
		}
		app.ServerError(w, r, err)
		return
	}

	app.RenderHTML(w, r, http.StatusOK, "post.page.html", &HTMLData{
		Title: post.Title,
		Post:  post,
	})
}

func (app *app) createPost(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if r.Method != http.MethodPost {
		app.renderPostForm(w, r, http.StatusOK, "create-post.page.html", &HTMLData{
			Title:    "New post",
			PostForm: forms.EmptyPostForm(),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.ClientError(w, http.StatusBadRequest)
		return
	}

	form := forms.NewPostForm(r.PostForm, app.CategoryService)
	in, err := form.Validate(r.Context())
	if err == nil {
		var post *models.Post
		post, err = app.PostService.CreatePost(r.Context(), in, user.ID)
		if errors.Is(err, database.ErrCategoryNotFound) {
			// category deleted between validation and insert
			err = forms.Errors{"category": {forms.MsgInvalidChoice}}
		}
		if err == nil {
			zerolog.Ctx(r.Context()).Info().Str("slug", post.Slug).Msg("post created")
			http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
			return
		}
	}

	var invalid forms.Errors
	if !errors.As(err, &invalid) {
		app.ServerError(w, r, err)
		return
	}

	app.renderPostForm(w, r, http.StatusUnprocessableEntity, "create-post.page.html", &HTMLData{
		Title:    "New post",
		PostForm: form,
		Errors:   invalid,
	})
}

func (app *app) editPost(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	post, ok := app.ownedPost(w, r, user)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		app.renderPostForm(w, r, http.StatusOK, "edit-post.page.html", &HTMLData{
			Title:    "Edit " + post.Title,
			Post:     post,
			PostForm: forms.PostFormFor(post),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.ClientError(w, http.StatusBadRequest)
		return
	}

	form := forms.NewPostForm(r.PostForm, app.CategoryService)
	in, err := form.Validate(r.Context())
	if err == nil {
		err = app.PostService.UpdatePost(r.Context(), post.ID, user.ID, in)
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			err = forms.Errors{"category": {forms.MsgInvalidChoice}}
		case errors.Is(err, database.ErrPostNotFound):
			// deleted in another tab
			app.NotFound(w)
			return
		case err == nil:
			zerolog.Ctx(r.Context()).Info().Str("slug", post.Slug).Msg("post updated")
			http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
			return
		}
	}

	var invalid forms.Errors
	if !errors.As(err, &invalid) {
		app.ServerError(w, r, err)
		return
	}

	app.renderPostForm(w, r, http.StatusUnprocessableEntity, "edit-post.page.html", &HTMLData{
		Title:    "Edit " + post.Title,
		Post:     post,
		PostForm: form,
		Errors:   invalid,
	})
}

func (app *app) deletePost(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	post, ok := app.ownedPost(w, r, user)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		app.RenderHTML(w, r, http.StatusOK, "delete-post.page.html", &HTMLData{
			Title: "Delete " + post.Title,
			Post:  post,
		})
		return
	}

	err := app.PostService.DeletePost(r.Context(), post.ID, user.ID)
	if err != nil && !errors.Is(err, database.ErrPostNotFound) {
		app.ServerError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("slug", post.Slug).Msg("post deleted")
	http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
}

// ownedPost loads the post named in the URL if the user wrote it. Any other
// post answers 404, exactly like a missing one.
func (app *app) ownedPost(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Post, bool) {
	postSlug := r.PathValue("slug")
	if !slug.Valid(postSlug) {
		app.NotFound(w)
		return nil, false
	}

	post, err := app.PostService.GetOwnedPost(r.Context(), postSlug, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			app.NotFound(w)
			return nil, false
		}
		app.ServerError(w, r, err)
		return nil, false
	}
	return post, true
}

// renderPostForm adds the category and status choices the form needs.
func (app *app) renderPostForm(w http.ResponseWriter, r *http.Request, status int, page string, data *HTMLData) {
	categories, err := app.CategoryService.GetAllCategories(r.Context())
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	data.Categories = categories
	data.Statuses = models.Statuses
	app.RenderHTML(w, r, status, page, data)
}
