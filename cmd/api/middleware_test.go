package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"valuefind/internal/roles"
	"valuefind/internal/store"

	"go.uber.org/zap"
)

func newTestApp() *application {
	return &application{logger: zap.NewNop().Sugar()}
}

func requestWithAccount(account *store.Account) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/store/products", nil)
	if account == nil {
		return req
	}
	ctx := context.WithValue(req.Context(), accountCtx, account)
	return req.WithContext(ctx)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	app := newTestApp()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	handler := app.RequireRoles(roles.StoreOwner)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithAccount(&store.Account{ID: "a1", CurrentRole: roles.StoreOwner}))

	if !called {
		t.Fatal("expected next handler to run")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireRolesDeniesWithRedirect(t *testing.T) {
	app := newTestApp()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	handler := app.RequireRoles(roles.StoreOwner)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithAccount(&store.Account{ID: "a1", CurrentRole: roles.Customer}))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusForbidden)
	}

	var body struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	want, err := roles.Landing(roles.Customer)
	if err != nil {
		t.Fatal(err)
	}
	if body.Redirect != want {
		t.Fatalf("got redirect %q, want %q", body.Redirect, want)
	}
}

func TestRequireRolesDeniesAnonymous(t *testing.T) {
	app := newTestApp()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	handler := app.RequireRoles(roles.PlatformAdmin)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithAccount(nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusForbidden)
	}

	var body struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Redirect != roles.LoginPath {
		t.Fatalf("got redirect %q, want %q", body.Redirect, roles.LoginPath)
	}
}

func TestRequireRolesEmptyRequirementAllowsAnyRole(t *testing.T) {
	app := newTestApp()

	for _, kind := range []roles.Kind{roles.Customer, roles.DeliveryPartner, roles.PlatformAdmin} {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		handler := app.RequireRoles()(next)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestWithAccount(&store.Account{ID: "a1", CurrentRole: kind}))

		if !called {
			t.Fatalf("expected next handler to run for %s", kind)
		}
	}
}
