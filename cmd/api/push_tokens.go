package main

import (
	"net/http"
)

type PushTokenPayload struct {
	Token string `json:"token" validate:"required,startswith=ExponentPushToken"`
}

// registerPushTokenHandler godoc
//
//	@Summary		Register a push token
//	@Description	Registers an Expo push token for the account's device. Re-registering is a no-op.
//	@Tags			push
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		PushTokenPayload	true	"Expo push token"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Router			/push-tokens [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Register(r.Context(), account.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"message": "token registered"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// removePushTokenHandler godoc
//
//	@Summary		Remove a push token
//	@Tags			push
//	@Accept			json
//	@Security		ApiKeyAuth
//	@Param			payload	body	PushTokenPayload	true	"Expo push token"
//	@Success		204
//	@Router			/push-tokens [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Remove(r.Context(), account.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
