package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"valuefind/internal/mailer"
	"valuefind/internal/otp"
	"valuefind/internal/roles"
	"valuefind/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SendOTPPayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

// sendOTPHandler godoc
//
//	@Summary		Send a registration OTP
//	@Description	Emails a six digit one-time code used to confirm the address during registration
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SendOTPPayload	true	"Recipient email"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/auth/otp [post]
func (app *application) sendOTPHandler(w http.ResponseWriter, r *http.Request) {
	var payload SendOTPPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	code, err := app.otp.Issue(r.Context(), otp.PurposeRegister, payload.Email)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	name := payload.Name
	if name == "" {
		name = payload.Email
	}

	vars := struct {
		Username  string
		Code      string
		ExpiresIn string
	}{
		Username:  name,
		Code:      code,
		ExpiresIn: app.config.mail.otpExp.String(),
	}

	status, err := app.mailer.Send(mailer.OTPCodeTemplate, name, payload.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending otp email", "error", err)
		app.internalServerError(w, r, err)
		return
	}
	app.logger.Infow("otp email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "code sent"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// checkEmailHandler godoc
//
//	@Summary		Check email availability
//	@Tags			auth
//	@Produce		json
//	@Param			email	query		string	true	"Email to check"
//	@Success		200		{object}	map[string]bool
//	@Router			/auth/check-email [get]
func (app *application) checkEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		app.badRequestResponse(w, r, errors.New("email query param is required"))
		return
	}

	exists, err := app.store.Accounts.EmailExists(r.Context(), email)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"exists": exists}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// checkPhoneHandler godoc
//
//	@Summary		Check phone availability
//	@Tags			auth
//	@Produce		json
//	@Param			phone	query		string	true	"Phone to check"
//	@Success		200		{object}	map[string]bool
//	@Router			/auth/check-phone [get]
func (app *application) checkPhoneHandler(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		app.badRequestResponse(w, r, errors.New("phone query param is required"))
		return
	}

	exists, err := app.store.Accounts.PhoneExists(r.Context(), phone)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"exists": exists}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RegisterAccountPayload struct {
	Email    string         `json:"email" validate:"required,email,max=255"`
	Phone    string         `json:"phone" validate:"required,inphone"`
	Name     string         `json:"name" validate:"required,max=100"`
	Password string         `json:"password" validate:"required,min=8,max=72"`
	Role     string         `json:"role" validate:"required"`
	Metadata roles.Metadata `json:"metadata"`
	Code     string         `json:"code" validate:"required,len=6,numeric"`
}

// registerAccountHandler godoc
//
//	@Summary		Register an account
//	@Description	Creates the account with its primary role after the emailed OTP is confirmed
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterAccountPayload	true	"Account details"
//	@Success		201		{object}	store.Account
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Router			/auth/register [post]
func (app *application) registerAccountHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterAccountPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.otp.Verify(ctx, otp.PurposeRegister, payload.Email, payload.Code); err != nil {
		switch {
		case errors.Is(err, otp.ErrCodeMismatch), errors.Is(err, otp.ErrCodeExpired):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	kind, err := roles.ParseKind(payload.Role)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	// Admin accounts are provisioned out of band, never self-registered.
	if kind == roles.PlatformAdmin {
		app.badRequestResponse(w, r, errors.New("role cannot be self registered"))
		return
	}

	if err := payload.Metadata.Validate(kind); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	account := &store.Account{
		ID:          uuid.New().String(),
		Email:       payload.Email,
		Phone:       payload.Phone,
		Name:        payload.Name,
		PrimaryRole: kind,
		CurrentRole: kind,
		Roles:       roles.Map{},
	}
	if err := account.Roles.Add(roles.NewEntry(kind, payload.Metadata)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := account.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrDuplicatePhone):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, account); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateTokenPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	Redirect     string `json:"redirect"`
}

// createTokenHandler godoc
//
//	@Summary		Log in
//	@Description	Issues an access/refresh token pair. Login always lands the session on the account's primary role.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateTokenPayload	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	error
//	@Router			/auth/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	account, err := app.store.Accounts.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := account.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		return
	}

	active, err := app.session.Begin(ctx, account.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(account.ID, string(active))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.SetRefreshToken(ctx, account.ID, hashToken(refreshToken)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	redirect, err := roles.Landing(active)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         string(active),
		Redirect:     redirect,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates the refresh token and issues a new access token carrying the session's active role
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RefreshTokenPayload	true	"Refresh token"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	error
//	@Router			/auth/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	jwtToken, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, ok := jwtToken.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid claims"))
		return
	}

	accountID, err := claims.GetSubject()
	if err != nil || accountID == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid sub claim"))
		return
	}

	ctx := r.Context()

	account, err := app.store.Accounts.GetByID(ctx, accountID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	// A logged-out or rotated-away token no longer matches the stored hash.
	if account.RefreshToken == "" || account.RefreshToken != hashToken(payload.RefreshToken) {
		app.unauthorizedErrorResponse(w, r, errors.New("refresh token is no longer valid"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(account.ID, string(account.CurrentRole))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.SetRefreshToken(ctx, account.ID, hashToken(refreshToken)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	redirect, err := roles.Landing(account.CurrentRole)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         string(account.CurrentRole),
		Redirect:     redirect,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Log out
//	@Description	Invalidates the stored refresh token
//	@Tags			auth
//	@Security		ApiKeyAuth
//	@Success		204
//	@Router			/auth/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	if err := app.store.Accounts.SetRefreshToken(r.Context(), account.ID, ""); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ForgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// forgotPasswordHandler godoc
//
//	@Summary		Request a password reset code
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ForgotPasswordPayload	true	"Account email"
//	@Success		200		{object}	map[string]string
//	@Router			/auth/forgot-password [post]
func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	account, err := app.store.Accounts.GetByEmail(ctx, payload.Email)
	if err != nil {
		// Same response either way so the endpoint cannot be used to
		// enumerate registered addresses.
		if errors.Is(err, store.ErrNotFound) {
			if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "if the account exists, a code was sent"}); err != nil {
				app.internalServerError(w, r, err)
			}
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	code, err := app.otp.Issue(ctx, otp.PurposePasswordReset, account.Email)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	vars := struct {
		Username  string
		Code      string
		ExpiresIn string
	}{
		Username:  account.Name,
		Code:      code,
		ExpiresIn: app.config.mail.otpExp.String(),
	}

	status, err := app.mailer.Send(mailer.ResetPasswordTemplate, account.Name, account.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending reset email", "error", err)
		app.internalServerError(w, r, err)
		return
	}
	app.logger.Infow("reset email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "if the account exists, a code was sent"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ResetPasswordPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// resetPasswordHandler godoc
//
//	@Summary		Reset password
//	@Description	Sets a new password after the emailed reset code is confirmed. Existing refresh tokens are revoked.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ResetPasswordPayload	true	"Email, code and new password"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	error
//	@Router			/auth/reset-password [post]
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.otp.Verify(ctx, otp.PurposePasswordReset, payload.Email, payload.Code); err != nil {
		switch {
		case errors.Is(err, otp.ErrCodeMismatch), errors.Is(err, otp.ErrCodeExpired):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	account, err := app.store.Accounts.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.SetPassword(ctx, account.ID, hash); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Accounts.SetRefreshToken(ctx, account.ID, ""); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
