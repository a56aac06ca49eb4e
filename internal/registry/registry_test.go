package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"valuefind/internal/roles"
	"valuefind/internal/store"
)

// memoryStore mimics the accounts table's versioned role document: reads
// return a deep copy, and the swap applies only when the version matches.
type memoryStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	versions map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string][]byte{}, versions: map[string]int64{}}
}

func (m *memoryStore) seed(t *testing.T, accountID string, doc roles.Map) {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	m.docs[accountID] = raw
	m.versions[accountID] = 1
}

func (m *memoryStore) RoleDocument(_ context.Context, accountID string) (roles.Map, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[accountID]
	if !ok {
		return nil, 0, store.ErrNotFound
	}
	doc := roles.Map{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, err
	}
	return doc, m.versions[accountID], nil
}

func (m *memoryStore) CompareAndSwapRoles(_ context.Context, accountID string, doc roles.Map, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[accountID] != version {
		return false, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	m.docs[accountID] = raw
	m.versions[accountID] = version + 1
	return true, nil
}

func seedCustomer(t *testing.T, ms *memoryStore) {
	t.Helper()
	doc := roles.Map{}
	if err := doc.Add(roles.NewEntry(roles.Customer, roles.Metadata{})); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	ms.seed(t, "acct-1", doc)
}

func TestAddRole(t *testing.T) {
	ms := newMemoryStore()
	seedCustomer(t, ms)
	reg := New(ms)
	ctx := context.Background()

	entry, err := reg.AddRole(ctx, "acct-1", roles.DeliveryPartner, roles.Metadata{
		Delivery: &roles.DeliveryPartnerMetadata{VehicleType: "bike", VehicleNumber: "KA-01-AB-1234"},
	})
	if err != nil {
		t.Fatalf("add role: %v", err)
	}
	if entry.Status != roles.StatusActive {
		t.Fatalf("new role should be active, got %s", entry.Status)
	}

	doc, err := reg.Roles(ctx, "acct-1")
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(doc) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(doc))
	}
	if _, ok := doc[roles.DeliveryPartner]; !ok {
		t.Fatal("delivery partner role missing after add")
	}
}

func TestAddRoleDuplicate(t *testing.T) {
	ms := newMemoryStore()
	seedCustomer(t, ms)
	reg := New(ms)
	ctx := context.Background()

	md := roles.Metadata{Delivery: &roles.DeliveryPartnerMetadata{VehicleType: "bike", VehicleNumber: "KA-01-AB-1234"}}
	if _, err := reg.AddRole(ctx, "acct-1", roles.DeliveryPartner, md); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := reg.AddRole(ctx, "acct-1", roles.DeliveryPartner, md)
	if !errors.Is(err, roles.ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}

	doc, _ := reg.Roles(ctx, "acct-1")
	if len(doc) != 2 {
		t.Fatalf("role map changed on failed add: %d entries", len(doc))
	}
}

func TestAddRoleInvalidMetadata(t *testing.T) {
	ms := newMemoryStore()
	seedCustomer(t, ms)
	reg := New(ms)

	_, err := reg.AddRole(context.Background(), "acct-1", roles.StoreOwner, roles.Metadata{})
	if !errors.Is(err, roles.ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}
}

func TestAddRoleUnknownAccount(t *testing.T) {
	reg := New(newMemoryStore())
	_, err := reg.AddRole(context.Background(), "ghost", roles.Customer, roles.Metadata{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Two concurrent additions of the same role kind must serialize through the
// version check: exactly one wins, the other observes the winner's entry on
// its retry and fails with ErrRoleExists.
func TestConcurrentAddSameRole(t *testing.T) {
	for i := 0; i < 50; i++ {
		ms := newMemoryStore()
		seedCustomer(t, ms)
		reg := New(ms)
		ctx := context.Background()

		md := roles.Metadata{Store: &roles.StoreOwnerMetadata{BusinessType: "trader", BusinessName: "Global Traders", Pincode: "560003"}}

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := reg.AddRole(ctx, "acct-1", roles.StoreOwner, md)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, roles.ErrRoleExists):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if successes != 1 || conflicts != 1 {
			t.Fatalf("expected 1 success and 1 conflict, got %d/%d", successes, conflicts)
		}

		doc, _ := reg.Roles(ctx, "acct-1")
		if len(doc) != 2 {
			t.Fatalf("expected exactly one store_owner entry, got %d roles", len(doc))
		}
	}
}

func TestSetVerificationState(t *testing.T) {
	ms := newMemoryStore()
	seedCustomer(t, ms)
	reg := New(ms)
	ctx := context.Background()

	if err := reg.SetVerificationState(ctx, "acct-1", roles.Customer, roles.VerificationVerified); err != nil {
		t.Fatalf("set verification: %v", err)
	}
	doc, _ := reg.Roles(ctx, "acct-1")
	if doc[roles.Customer].Verification != roles.VerificationVerified {
		t.Fatalf("expected verified, got %s", doc[roles.Customer].Verification)
	}

	err := reg.SetVerificationState(ctx, "acct-1", roles.StoreOwner, roles.VerificationPending)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent role, got %v", err)
	}
}
