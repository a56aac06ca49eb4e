// Package registry owns the authoritative role document for each account.
// All mutations go through a compare-and-swap on the document's version so
// that concurrent updates to the same account never lose writes: a race
// between two additions of the same role kind yields exactly one success
// and one conflict.
package registry

import (
	"context"
	"errors"
	"fmt"

	"valuefind/internal/roles"
	"valuefind/internal/store"
)

// maxCASRetries bounds how often a mutation re-reads after losing a
// version race before giving up.
const maxCASRetries = 3

var ErrTooMuchContention = errors.New("account role document contention, retry")

// Store is the persistence port for account role documents. Implementations
// must make CompareAndSwap atomic: it applies the new document only when the
// stored version still matches and reports whether it did.
type Store interface {
	RoleDocument(ctx context.Context, accountID string) (roles.Map, int64, error)
	CompareAndSwapRoles(ctx context.Context, accountID string, doc roles.Map, version int64) (bool, error)
}

type Registry struct {
	store Store
}

func New(store Store) *Registry {
	return &Registry{store: store}
}

// Roles returns the account's role document.
func (r *Registry) Roles(ctx context.Context, accountID string) (roles.Map, error) {
	doc, _, err := r.store.RoleDocument(ctx, accountID)
	return doc, err
}

// AddRole registers a new role for the account. The metadata must match the
// shape the role kind requires. The created entry is immediately active
// with verification not started.
func (r *Registry) AddRole(ctx context.Context, accountID string, kind roles.Kind, md roles.Metadata) (roles.Entry, error) {
	if !kind.Valid() {
		return roles.Entry{}, fmt.Errorf("add role: %w", roles.ErrInvalidRole)
	}
	if err := md.Validate(kind); err != nil {
		return roles.Entry{}, err
	}

	entry := roles.NewEntry(kind, md)
	err := r.mutate(ctx, accountID, func(doc roles.Map) error {
		return doc.Add(entry)
	})
	if err != nil {
		return roles.Entry{}, err
	}
	return entry, nil
}

// SetVerificationState moves one role's verification review state.
// Administrative operation; fails with store.ErrNotFound when the account
// or the role is absent.
func (r *Registry) SetVerificationState(ctx context.Context, accountID string, kind roles.Kind, state roles.VerificationState) error {
	return r.mutate(ctx, accountID, func(doc roles.Map) error {
		e, ok := doc[kind]
		if !ok {
			return store.ErrNotFound
		}
		e.Verification = state
		doc[kind] = e
		return nil
	})
}

// mutate runs a read-modify-write cycle on the account's role document.
// Losing the version race re-reads and reapplies, so a duplicate add that
// lost to its twin still observes the winner's entry and fails cleanly.
func (r *Registry) mutate(ctx context.Context, accountID string, fn func(roles.Map) error) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		doc, version, err := r.store.RoleDocument(ctx, accountID)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		swapped, err := r.store.CompareAndSwapRoles(ctx, accountID, doc, version)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return ErrTooMuchContention
}
