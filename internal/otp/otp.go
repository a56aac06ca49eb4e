// Package otp issues and verifies short-lived one-time codes for
// registration and password reset.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	ErrCodeMismatch = errors.New("one-time code does not match")
	ErrCodeExpired  = errors.New("one-time code expired or never issued")
)

// Purposes namespace codes so a registration code can never redeem a
// password reset.
const (
	PurposeRegister      = "otp_register"
	PurposePasswordReset = "otp_reset"
)

const DefaultTTL = 10 * time.Minute

// Store is the cache slice the service needs; satisfied by cache.Cache.
type Store interface {
	Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
}

type Service struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, ttl: ttl}
}

// Issue generates a six digit code for the recipient, replacing any code
// still outstanding for the same purpose.
func (s *Service) Issue(ctx context.Context, purpose, recipient string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, purpose, recipient, code, s.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Verify redeems a code. A correct code is single use: it is deleted on
// success. A wrong code leaves the stored one intact so a typo does not
// force a resend.
func (s *Service) Verify(ctx context.Context, purpose, recipient, code string) error {
	stored, err := s.store.Get(ctx, purpose, recipient)
	if err != nil {
		return ErrCodeExpired
	}
	if stored != code {
		return ErrCodeMismatch
	}
	return s.store.Delete(ctx, purpose, recipient)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
