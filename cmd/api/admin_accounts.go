package main

import (
	"errors"
	"net/http"

	"valuefind/internal/notifications"
	"valuefind/internal/registry"
	"valuefind/internal/roles"
	"valuefind/internal/store"

	"github.com/go-chi/chi/v5"
)

// adminListVerificationsHandler godoc
//
//	@Summary		List accounts by verification state
//	@Description	Returns accounts holding at least one role in the given verification state. Defaults to pending.
//	@Tags			admin
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			state	query		string	false	"Verification state"	default(pending)
//	@Success		200		{array}		store.Account
//	@Failure		400		{object}	error
//	@Router			/admin/verifications [get]
func (app *application) adminListVerificationsHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("state")
	if raw == "" {
		raw = string(roles.VerificationPending)
	}

	state, err := roles.ParseVerificationState(raw)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	accounts, err := app.store.Accounts.ListByVerificationState(r.Context(), state)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, accounts); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminGetAccountRolesHandler godoc
//
//	@Summary		Inspect an account's role document
//	@Tags			admin
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			accountID	path		string	true	"Account ID"
//	@Success		200			{object}	map[string]roles.Entry
//	@Failure		404			{object}	error
//	@Router			/admin/accounts/{accountID}/roles [get]
func (app *application) adminGetAccountRolesHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	doc, err := app.registry.Roles(r.Context(), accountID)
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

type SetVerificationPayload struct {
	State string `json:"state" validate:"required"`
}

// adminSetVerificationHandler godoc
//
//	@Summary		Record a verification decision
//	@Description	Moves one of the account's roles to the given verification state and notifies the account's devices
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			accountID	path		string					true	"Account ID"
//	@Param			roleKind	path		string					true	"Role kind"
//	@Param			payload		body		SetVerificationPayload	true	"New state"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Router			/admin/accounts/{accountID}/roles/{roleKind}/verification [put]
func (app *application) adminSetVerificationHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	kind, err := roles.ParseKind(chi.URLParam(r, "roleKind"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload SetVerificationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	state, err := roles.ParseVerificationState(payload.State)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.registry.SetVerificationState(ctx, accountID, kind, state); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, registry.ErrTooMuchContention):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := notifications.SendVerificationDecision(ctx, app.push, app.store.PushTokens, accountID, kind, state); err != nil {
		// The decision is already recorded, a failed push should not fail
		// the request.
		app.logger.Errorw("error sending verification push", "account", accountID, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"role":  string(kind),
		"state": string(state),
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
