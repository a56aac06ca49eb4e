// Package session tracks which single role of a multi-role account is
// active for the current login session. The active role is persisted on the
// account projection rather than held client-side, so every request and
// re-fetch observes the latest switch.
package session

import (
	"context"

	"valuefind/internal/roles"
	"valuefind/internal/store"
)

// AccountSource is the slice of account storage the selector needs.
type AccountSource interface {
	GetByID(ctx context.Context, id string) (*store.Account, error)
	SetCurrentRole(ctx context.Context, id string, kind roles.Kind) error
}

type Selector struct {
	accounts AccountSource
}

func NewSelector(accounts AccountSource) *Selector {
	return &Selector{accounts: accounts}
}

// Begin resets the active role to the account's primary role at session
// start. Whatever the previous session switched to is forgotten.
func (s *Selector) Begin(ctx context.Context, accountID string) (roles.Kind, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.CurrentRole != account.PrimaryRole {
		if err := s.accounts.SetCurrentRole(ctx, accountID, account.PrimaryRole); err != nil {
			return "", err
		}
	}
	return account.PrimaryRole, nil
}

// Switch moves the session to target. The target must be registered for the
// account (roles.ErrInvalidRole otherwise) and active (roles.ErrRoleInactive).
// Switching to the role already active is a no-op.
func (s *Selector) Switch(ctx context.Context, accountID string, target roles.Kind) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.CurrentRole == target {
		return nil
	}
	if err := account.Roles.CanActivate(target); err != nil {
		return err
	}
	return s.accounts.SetCurrentRole(ctx, accountID, target)
}

// Active returns the persisted active role for the account.
func (s *Selector) Active(ctx context.Context, accountID string) (roles.Kind, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.CurrentRole, nil
}
