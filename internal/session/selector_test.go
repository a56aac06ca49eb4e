package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"valuefind/internal/roles"
	"valuefind/internal/store"
)

type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*store.Account
}

func newMemoryAccounts(accounts ...*store.Account) *memoryAccounts {
	m := &memoryAccounts{accounts: map[string]*store.Account{}}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *memoryAccounts) GetByID(_ context.Context, id string) (*store.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memoryAccounts) SetCurrentRole(_ context.Context, id string, kind roles.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return store.ErrNotFound
	}
	a.CurrentRole = kind
	return nil
}

func multiRoleAccount() *store.Account {
	m := roles.Map{}
	m.Add(roles.NewEntry(roles.Customer, roles.Metadata{}))
	m.Add(roles.NewEntry(roles.StoreOwner, roles.Metadata{
		Store: &roles.StoreOwnerMetadata{BusinessType: "retailer", BusinessName: "Super Store", Pincode: "400001"},
	}))
	return &store.Account{
		ID:          "acct-1",
		Email:       "owner@example.com",
		PrimaryRole: roles.Customer,
		CurrentRole: roles.Customer,
		Roles:       m,
	}
}

func TestSwitchToRegisteredActiveRole(t *testing.T) {
	accounts := newMemoryAccounts(multiRoleAccount())
	sel := NewSelector(accounts)
	ctx := context.Background()

	if err := sel.Switch(ctx, "acct-1", roles.StoreOwner); err != nil {
		t.Fatalf("switch: %v", err)
	}
	active, err := sel.Active(ctx, "acct-1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != roles.StoreOwner {
		t.Fatalf("expected active role store_owner, got %s", active)
	}
}

func TestSwitchToUnregisteredRole(t *testing.T) {
	accounts := newMemoryAccounts(multiRoleAccount())
	sel := NewSelector(accounts)
	ctx := context.Background()

	err := sel.Switch(ctx, "acct-1", roles.DeliveryPartner)
	if !errors.Is(err, roles.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	active, _ := sel.Active(ctx, "acct-1")
	if active != roles.Customer {
		t.Fatalf("active role changed on failed switch: %s", active)
	}
}

func TestSwitchToInactiveRole(t *testing.T) {
	account := multiRoleAccount()
	entry := account.Roles[roles.StoreOwner]
	entry.Status = roles.StatusInactive
	account.Roles[roles.StoreOwner] = entry

	sel := NewSelector(newMemoryAccounts(account))
	ctx := context.Background()

	err := sel.Switch(ctx, "acct-1", roles.StoreOwner)
	if !errors.Is(err, roles.ErrRoleInactive) {
		t.Fatalf("expected ErrRoleInactive, got %v", err)
	}
	active, _ := sel.Active(ctx, "acct-1")
	if active != roles.Customer {
		t.Fatalf("active role changed on failed switch: %s", active)
	}
}

func TestSwitchToCurrentRoleIsNoop(t *testing.T) {
	accounts := newMemoryAccounts(multiRoleAccount())
	sel := NewSelector(accounts)

	if err := sel.Switch(context.Background(), "acct-1", roles.Customer); err != nil {
		t.Fatalf("no-op switch: %v", err)
	}
}

func TestBeginResetsToPrimaryRole(t *testing.T) {
	accounts := newMemoryAccounts(multiRoleAccount())
	sel := NewSelector(accounts)
	ctx := context.Background()

	if err := sel.Switch(ctx, "acct-1", roles.StoreOwner); err != nil {
		t.Fatalf("switch: %v", err)
	}

	// Next login starts over from the primary role.
	kind, err := sel.Begin(ctx, "acct-1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if kind != roles.Customer {
		t.Fatalf("expected primary role customer, got %s", kind)
	}
	active, _ := sel.Active(ctx, "acct-1")
	if active != roles.Customer {
		t.Fatalf("expected active role reset to customer, got %s", active)
	}
}

func TestSwitchUnknownAccount(t *testing.T) {
	sel := NewSelector(newMemoryAccounts())
	err := sel.Switch(context.Background(), "ghost", roles.Customer)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentSwitchesLandOnOneRole(t *testing.T) {
	accounts := newMemoryAccounts(multiRoleAccount())
	sel := NewSelector(accounts)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		target := roles.Customer
		if i%2 == 0 {
			target = roles.StoreOwner
		}
		wg.Add(1)
		go func(k roles.Kind) {
			defer wg.Done()
			if err := sel.Switch(ctx, "acct-1", k); err != nil {
				t.Errorf("switch %s: %v", k, err)
			}
		}(target)
	}
	wg.Wait()

	active, err := sel.Active(ctx, "acct-1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != roles.Customer && active != roles.StoreOwner {
		t.Fatalf("active role is neither contender: %s", active)
	}
}
