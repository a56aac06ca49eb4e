package roles

import (
	"errors"
	"testing"
)

func TestAuthorizePublicResource(t *testing.T) {
	d, err := Authorize(Customer)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected empty required set to allow")
	}
}

func TestAuthorizeMembership(t *testing.T) {
	tests := []struct {
		name     string
		active   Kind
		required []Kind
		allowed  bool
		redirect string
	}{
		{name: "exact match", active: StoreOwner, required: []Kind{StoreOwner}, allowed: true},
		{name: "one of several", active: DeliveryPartner, required: []Kind{PlatformAdmin, DeliveryPartner}, allowed: true},
		{name: "denied customer", active: Customer, required: []Kind{PlatformAdmin}, allowed: false, redirect: "/customer/dashboard"},
		{name: "denied store owner", active: StoreOwner, required: []Kind{Customer}, allowed: false, redirect: "/store/dashboard"},
		{name: "denied operator", active: TerritoryOperator, required: []Kind{StoreOwner, Customer}, allowed: false, redirect: "/operator/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Authorize(tt.active, tt.required...)
			if err != nil {
				t.Fatalf("authorize: %v", err)
			}
			if d.Allowed != tt.allowed {
				t.Fatalf("expected allowed=%v, got %v", tt.allowed, d.Allowed)
			}
			if !d.Allowed && d.Redirect != tt.redirect {
				t.Fatalf("expected redirect %q, got %q", tt.redirect, d.Redirect)
			}
		})
	}
}

func TestAuthorizeUnknownActiveRoleIsFatal(t *testing.T) {
	_, err := Authorize(Kind("ghost"), Customer)
	if !errors.Is(err, ErrUnknownLanding) {
		t.Fatalf("expected ErrUnknownLanding, got %v", err)
	}
}

func TestLandingCoversEveryKind(t *testing.T) {
	for k := range allKinds {
		if _, err := Landing(k); err != nil {
			t.Fatalf("role %s has no landing location: %v", k, err)
		}
	}
}

func TestDenyAnonymous(t *testing.T) {
	d := DenyAnonymous()
	if d.Allowed {
		t.Fatal("anonymous caller must be denied")
	}
	if d.Redirect != LoginPath {
		t.Fatalf("expected redirect to %q, got %q", LoginPath, d.Redirect)
	}
}
