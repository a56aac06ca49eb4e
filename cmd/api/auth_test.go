package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"valuefind/internal/roles"
	"valuefind/internal/store"
)

type stubAccounts struct {
	byEmail map[string]*store.Account
}

func (s *stubAccounts) Create(_ context.Context, _ *store.Account) error { return nil }

func (s *stubAccounts) GetByID(_ context.Context, _ string) (*store.Account, error) {
	return nil, store.ErrNotFound
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (*store.Account, error) {
	account, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return account, nil
}

func (s *stubAccounts) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *stubAccounts) PhoneExists(_ context.Context, _ string) (bool, error) { return false, nil }

func (s *stubAccounts) RoleDocument(_ context.Context, _ string) (roles.Map, int64, error) {
	return nil, 0, store.ErrNotFound
}

func (s *stubAccounts) CompareAndSwapRoles(_ context.Context, _ string, _ roles.Map, _ int64) (bool, error) {
	return false, store.ErrNotFound
}

func (s *stubAccounts) CurrentRole(_ context.Context, _ string) (roles.Kind, error) {
	return "", store.ErrNotFound
}

func (s *stubAccounts) SetCurrentRole(_ context.Context, _ string, _ roles.Kind) error { return nil }

func (s *stubAccounts) SetRefreshToken(_ context.Context, _, _ string) error { return nil }

func (s *stubAccounts) SetPassword(_ context.Context, _ string, _ []byte) error { return nil }

func (s *stubAccounts) SetAvatarURL(_ context.Context, _, _ string) error { return nil }

func (s *stubAccounts) UpdateProfile(_ context.Context, _, _, _ string) error { return nil }

func (s *stubAccounts) ListByVerificationState(_ context.Context, _ roles.VerificationState) ([]store.Account, error) {
	return nil, nil
}

func TestForgotPasswordUnknownEmailRespondsOK(t *testing.T) {
	app := newTestApp()
	app.store = store.Storage{Accounts: &stubAccounts{}}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/forgot-password",
		strings.NewReader(`{"email":"ghost@example.com"}`))

	rr := httptest.NewRecorder()
	app.forgotPasswordHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Data["message"] != "if the account exists, a code was sent" {
		t.Fatalf("got message %q, want the neutral one", body.Data["message"])
	}
}
