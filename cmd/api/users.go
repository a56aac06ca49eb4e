package main

import (
	"errors"
	"fmt"
	"net/http"

	"valuefind/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type UpdateProfilePayload struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,inphone"`
}

// updateProfileHandler godoc
//
//	@Summary		Update my profile
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		UpdateProfilePayload	true	"Name and phone"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Router			/profile [put]
func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload UpdateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Accounts.UpdateProfile(r.Context(), account.ID, payload.Name, payload.Phone); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicatePhone):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"name":  payload.Name,
		"phone": payload.Phone,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadAvatarHandler godoc
//
//	@Summary		Upload my avatar
//	@Description	Accepts a multipart form with an "avatar" file and replaces the stored picture
//	@Tags			profile
//	@Accept			mpfd
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			avatar	formData	file	true	"JPEG or PNG image"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Router			/profile/avatar [post]
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		app.badRequestResponse(w, r, errors.New("only jpeg and png images are allowed"))
		return
	}

	ctx := r.Context()

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%s", account.ID),
		Overwrite:      boolPtr(true),
		Folder:         "avatars",
		Transformation: "w_300,h_300,c_fill,q_auto",
	}
	uploadResult, err := app.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.SetAvatarURL(ctx, account.ID, uploadResult.SecureURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"url": uploadResult.SecureURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
