package roles

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"platform_admin", "territory_operator", "store_owner", "delivery_partner", "customer"} {
		if _, err := ParseKind(s); err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
	}
	if _, err := ParseKind("superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNewEntryDefaults(t *testing.T) {
	e := NewEntry(Customer, Metadata{})
	if e.Status != StatusActive {
		t.Fatalf("new entry should be active, got %s", e.Status)
	}
	if e.Verification != VerificationNotStarted {
		t.Fatalf("new entry verification should be not_started, got %s", e.Verification)
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("new entry missing created_at")
	}
}

func TestMapAddRejectsDuplicate(t *testing.T) {
	m := Map{}
	if err := m.Add(NewEntry(Customer, Metadata{})); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := m.Add(NewEntry(Customer, Metadata{}))
	if !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("role map changed on failed add: %d entries", len(m))
	}
}

func TestMapCanActivate(t *testing.T) {
	m := Map{}
	if err := m.Add(NewEntry(Customer, Metadata{})); err != nil {
		t.Fatalf("add customer: %v", err)
	}
	inactive := NewEntry(StoreOwner, Metadata{Store: &StoreOwnerMetadata{BusinessType: "retailer"}})
	inactive.Status = StatusInactive
	if err := m.Add(inactive); err != nil {
		t.Fatalf("add store owner: %v", err)
	}

	if err := m.CanActivate(Customer); err != nil {
		t.Fatalf("active role should activate: %v", err)
	}
	if err := m.CanActivate(StoreOwner); !errors.Is(err, ErrRoleInactive) {
		t.Fatalf("expected ErrRoleInactive, got %v", err)
	}
	if err := m.CanActivate(DeliveryPartner); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
