package main

import (
	"errors"
	"net/http"
	"strconv"

	"valuefind/internal/store"

	"github.com/go-chi/chi/v5"
)

// listCategoriesHandler godoc
//
//	@Summary		List storefront categories
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	store.Category
//	@Router			/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.store.Categories.List(r.Context(), true)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, categories); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateCategoryPayload struct {
	Name        string `json:"name" validate:"required,max=80"`
	Slug        string `json:"slug" validate:"required,max=80,lowercase"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}

// adminCreateCategoryHandler godoc
//
//	@Summary		Create a category
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		CreateCategoryPayload	true	"Category details"
//	@Success		201		{object}	store.Category
//	@Failure		409		{object}	error
//	@Router			/admin/categories [post]
func (app *application) adminCreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateCategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category := &store.Category{
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		IsActive:    payload.IsActive,
		SortOrder:   payload.SortOrder,
	}

	if err := app.store.Categories.Create(r.Context(), category); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminUpdateCategoryHandler godoc
//
//	@Summary		Update a category
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			categoryID	path		int						true	"Category ID"
//	@Param			payload		body		CreateCategoryPayload	true	"New details"
//	@Success		200			{object}	store.Category
//	@Failure		404			{object}	error
//	@Router			/admin/categories/{categoryID} [put]
func (app *application) adminUpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateCategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category := &store.Category{
		ID:          categoryID,
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		IsActive:    payload.IsActive,
		SortOrder:   payload.SortOrder,
	}

	if err := app.store.Categories.Update(r.Context(), category); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminDeleteCategoryHandler godoc
//
//	@Summary		Delete a category
//	@Tags			admin
//	@Security		ApiKeyAuth
//	@Param			categoryID	path	int	true	"Category ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Router			/admin/categories/{categoryID} [delete]
func (app *application) adminDeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Categories.Delete(r.Context(), categoryID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
