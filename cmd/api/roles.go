package main

import (
	"errors"
	"net/http"

	"valuefind/internal/registry"
	"valuefind/internal/roles"
	"valuefind/internal/store"
)

// getRolesHandler godoc
//
//	@Summary		List my roles
//	@Description	Returns every role registered on the account with its activation and verification state
//	@Tags			roles
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	map[string]roles.Entry
//	@Router			/roles [get]
func (app *application) getRolesHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	doc, err := app.registry.Roles(r.Context(), account.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, doc); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AddRolePayload struct {
	Role     string         `json:"role" validate:"required"`
	Metadata roles.Metadata `json:"metadata"`
}

// addRoleHandler godoc
//
//	@Summary		Register an additional role
//	@Description	Adds a role to the account's role document. The role starts active with verification not started.
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		AddRolePayload	true	"Role kind and its metadata"
//	@Success		201		{object}	roles.Entry
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Router			/roles [post]
func (app *application) addRoleHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload AddRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	kind, err := roles.ParseKind(payload.Role)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if kind == roles.PlatformAdmin {
		app.badRequestResponse(w, r, errors.New("role cannot be self registered"))
		return
	}

	entry, err := app.registry.AddRole(r.Context(), account.ID, kind, payload.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, roles.ErrRoleExists):
			app.conflictResponse(w, r, err)
		case errors.Is(err, roles.ErrInvalidMetadata), errors.Is(err, roles.ErrInvalidRole):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, registry.ErrTooMuchContention):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, entry); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SwitchRolePayload struct {
	Role string `json:"role" validate:"required"`
}

type ActiveRoleResponse struct {
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}

// switchRoleHandler godoc
//
//	@Summary		Switch the active role
//	@Description	Activates another registered role for the session and returns its landing location
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		SwitchRolePayload	true	"Target role"
//	@Success		200		{object}	ActiveRoleResponse
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Router			/roles/switch [post]
func (app *application) switchRoleHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload SwitchRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	target, err := roles.ParseKind(payload.Role)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.session.Switch(ctx, account.ID, target); err != nil {
		switch {
		case errors.Is(err, roles.ErrInvalidRole):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, roles.ErrRoleInactive):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	redirect, err := roles.Landing(target)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := ActiveRoleResponse{Role: string(target), Redirect: redirect}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// activeRoleHandler godoc
//
//	@Summary		Get the active role
//	@Tags			roles
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	ActiveRoleResponse
//	@Router			/roles/active [get]
func (app *application) activeRoleHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	active, err := app.session.Active(r.Context(), account.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	redirect, err := roles.Landing(active)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := ActiveRoleResponse{Role: string(active), Redirect: redirect}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
