package main

import (
	"errors"
	"net/http"

	"valuefind/internal/roles"
	"valuefind/internal/store"

	"github.com/go-chi/chi/v5"
)

// getTerritoryHandler godoc
//
//	@Summary		Check pincode serviceability
//	@Description	Returns the territory covering a pincode, 404 when the pincode is not serviced
//	@Tags			territories
//	@Produce		json
//	@Param			pincode	path		string	true	"Six digit pincode"
//	@Success		200		{object}	store.Territory
//	@Failure		404		{object}	error
//	@Router			/territories/{pincode} [get]
func (app *application) getTerritoryHandler(w http.ResponseWriter, r *http.Request) {
	pincode := chi.URLParam(r, "pincode")

	territory, err := app.store.Territories.GetByPincode(r.Context(), pincode)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, territory); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyTerritoriesHandler godoc
//
//	@Summary		List territories assigned to me
//	@Tags			territories
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{array}	store.Territory
//	@Router			/operator/territories [get]
func (app *application) listMyTerritoriesHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	territories, err := app.store.Territories.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	mine := make([]store.Territory, 0)
	for _, t := range territories {
		if t.OperatorID.Valid && t.OperatorID.String == account.ID {
			mine = append(mine, t)
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, mine); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminListTerritoriesHandler godoc
//
//	@Summary		List all territories
//	@Tags			admin
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{array}	store.Territory
//	@Router			/admin/territories [get]
func (app *application) adminListTerritoriesHandler(w http.ResponseWriter, r *http.Request) {
	territories, err := app.store.Territories.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, territories); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateTerritoryPayload struct {
	Pincode  string `json:"pincode" validate:"required,pincode"`
	Area     string `json:"area" validate:"required,max=120"`
	City     string `json:"city" validate:"required,max=80"`
	State    string `json:"state" validate:"required,max=80"`
	IsActive bool   `json:"is_active"`
}

// adminCreateTerritoryHandler godoc
//
//	@Summary		Open a territory
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		CreateTerritoryPayload	true	"Territory details"
//	@Success		201		{object}	store.Territory
//	@Failure		409		{object}	error
//	@Router			/admin/territories [post]
func (app *application) adminCreateTerritoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTerritoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	territory := &store.Territory{
		Pincode:  payload.Pincode,
		Area:     payload.Area,
		City:     payload.City,
		State:    payload.State,
		IsActive: payload.IsActive,
	}

	if err := app.store.Territories.Create(r.Context(), territory); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, territory); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateTerritoryPayload struct {
	Area     string `json:"area" validate:"required,max=120"`
	City     string `json:"city" validate:"required,max=80"`
	State    string `json:"state" validate:"required,max=80"`
	IsActive bool   `json:"is_active"`
}

// adminUpdateTerritoryHandler godoc
//
//	@Summary		Update a territory
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			pincode	path		string					true	"Six digit pincode"
//	@Param			payload	body		UpdateTerritoryPayload	true	"New details"
//	@Success		200		{object}	store.Territory
//	@Failure		404		{object}	error
//	@Router			/admin/territories/{pincode} [put]
func (app *application) adminUpdateTerritoryHandler(w http.ResponseWriter, r *http.Request) {
	pincode := chi.URLParam(r, "pincode")

	var payload UpdateTerritoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	territory := &store.Territory{
		Pincode:  pincode,
		Area:     payload.Area,
		City:     payload.City,
		State:    payload.State,
		IsActive: payload.IsActive,
	}

	if err := app.store.Territories.Update(r.Context(), territory); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, territory); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AssignOperatorPayload struct {
	OperatorID string `json:"operator_id" validate:"omitempty,uuid"`
}

// adminAssignOperatorHandler godoc
//
//	@Summary		Assign an operator to a territory
//	@Description	Links a territory operator account to the pincode. An empty operator_id unassigns.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			pincode	path		string					true	"Six digit pincode"
//	@Param			payload	body		AssignOperatorPayload	true	"Operator account ID"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/admin/territories/{pincode}/operator [put]
func (app *application) adminAssignOperatorHandler(w http.ResponseWriter, r *http.Request) {
	pincode := chi.URLParam(r, "pincode")

	var payload AssignOperatorPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if payload.OperatorID != "" {
		operator, err := app.store.Accounts.GetByID(ctx, payload.OperatorID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				app.notFoundResponse(w, r, err)
			default:
				app.internalServerError(w, r, err)
			}
			return
		}
		if _, ok := operator.Roles[roles.TerritoryOperator]; !ok {
			app.badRequestResponse(w, r, errors.New("account does not hold the territory operator role"))
			return
		}
	}

	if err := app.store.Territories.AssignOperator(ctx, pincode, payload.OperatorID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"pincode":     pincode,
		"operator_id": payload.OperatorID,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
