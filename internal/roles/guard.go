package roles

import (
	"errors"
	"fmt"
)

// ErrUnknownLanding means the active role has no canonical landing
// location. Every valid role is in the map, so hitting this is a
// deployment or data integrity bug, not a recoverable deny.
var ErrUnknownLanding = errors.New("no landing location configured for role")

// LoginPath is where unauthenticated callers are redirected.
const LoginPath = "/login"

// landing maps each role kind to its default dashboard. A denied caller is
// redirected here instead of dead-ending on an error page.
var landing = map[Kind]string{
	PlatformAdmin:     "/admin/dashboard",
	TerritoryOperator: "/operator/dashboard",
	StoreOwner:        "/store/dashboard",
	DeliveryPartner:   "/delivery/dashboard",
	Customer:          "/customer/dashboard",
}

// Landing returns the canonical landing location for a role kind.
func Landing(kind Kind) (string, error) {
	path, ok := landing[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLanding, kind)
	}
	return path, nil
}

// Decision is the outcome of an authorization check. When Allowed is false,
// Redirect names a location that is valid for the caller's current role.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Authorize gates an operation on the session's active role. An empty
// required set means the resource is public. The caller must already be
// authenticated; use DenyAnonymous for the unauthenticated case.
func Authorize(active Kind, required ...Kind) (Decision, error) {
	if len(required) == 0 {
		return Decision{Allowed: true}, nil
	}
	for _, k := range required {
		if k == active {
			return Decision{Allowed: true}, nil
		}
	}
	redirect, err := Landing(active)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: false, Redirect: redirect}, nil
}

// DenyAnonymous is the fixed decision for unauthenticated callers.
func DenyAnonymous() Decision {
	return Decision{Allowed: false, Redirect: LoginPath}
}
