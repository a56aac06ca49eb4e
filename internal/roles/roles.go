package roles

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRole  = errors.New("role is not registered for this account")
	ErrRoleInactive = errors.New("role is deactivated for this account")
	ErrRoleExists   = errors.New("role already registered for this account")
)

// Kind identifies one of the fixed marketplace roles an account can hold.
type Kind string

const (
	PlatformAdmin     Kind = "platform_admin"
	TerritoryOperator Kind = "territory_operator"
	StoreOwner        Kind = "store_owner"
	DeliveryPartner   Kind = "delivery_partner"
	Customer          Kind = "customer"
)

var allKinds = map[Kind]bool{
	PlatformAdmin:     true,
	TerritoryOperator: true,
	StoreOwner:        true,
	DeliveryPartner:   true,
	Customer:          true,
}

func (k Kind) Valid() bool {
	return allKinds[k]
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown role %q: %w", s, ErrInvalidRole)
	}
	return k, nil
}

type ActivationStatus string

const (
	StatusActive   ActivationStatus = "active"
	StatusInactive ActivationStatus = "inactive"
)

// VerificationState tracks KYC review progress for a role. It is
// informational only: an unverified role can still be activated, review
// happens out of band.
type VerificationState string

const (
	VerificationNotStarted  VerificationState = "not_started"
	VerificationPending     VerificationState = "pending"
	VerificationUnderReview VerificationState = "under_review"
	VerificationVerified    VerificationState = "verified"
	VerificationRejected    VerificationState = "rejected"
)

var allVerificationStates = map[VerificationState]bool{
	VerificationNotStarted:  true,
	VerificationPending:     true,
	VerificationUnderReview: true,
	VerificationVerified:    true,
	VerificationRejected:    true,
}

func ParseVerificationState(s string) (VerificationState, error) {
	vs := VerificationState(s)
	if !allVerificationStates[vs] {
		return "", fmt.Errorf("unknown verification state %q", s)
	}
	return vs, nil
}

// Entry is one role's record inside an account's role document.
type Entry struct {
	Kind         Kind              `json:"kind"`
	Status       ActivationStatus  `json:"status"`
	Verification VerificationState `json:"verification"`
	Metadata     Metadata          `json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewEntry builds the entry created when a role is added to an account.
// A fresh role is immediately active, there is no approval gate.
func NewEntry(kind Kind, md Metadata) Entry {
	return Entry{
		Kind:         kind,
		Status:       StatusActive,
		Verification: VerificationNotStarted,
		Metadata:     md,
		CreatedAt:    time.Now().UTC(),
	}
}

// Map is an account's role document, keyed by role kind. It is stored as a
// single JSON document and mutated only through compare-and-swap updates.
type Map map[Kind]Entry

func (m Map) Add(e Entry) error {
	if _, ok := m[e.Kind]; ok {
		return ErrRoleExists
	}
	m[e.Kind] = e
	return nil
}

// CanActivate reports whether kind may become the session's active role.
func (m Map) CanActivate(kind Kind) error {
	e, ok := m[kind]
	if !ok {
		return ErrInvalidRole
	}
	if e.Status != StatusActive {
		return ErrRoleInactive
	}
	return nil
}

// Kinds returns the role kinds present in the document.
func (m Map) Kinds() []Kind {
	out := make([]Kind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
