package web

import (
	"errors"
	"net/http"

	"blog/internal/database"
)

func (app *app) viewCategory(w http.ResponseWriter, r *http.Request) {
	category, err := app.CategoryService.GetCategoryBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			app.NotFound(w)
			return
		}
		app.ServerError(w, r, err)
		return
	}

	filter := database.PostFilter{CategoryID: category.ID}
	pp, err := app.PostService.PublishedPage(r.Context(), filter, r.URL.Query().Get("page"))
	if err != nil {
		app.ServerError(w, r, err)
		return
	}

	app.RenderHTML(w, r, http.StatusOK, "category.page.html", &HTMLData{
		Title:    category.Name,
		Category: category,
		Posts:    pp.Posts,
		Page:     &pp.Page,
	})
}
