package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(_ context.Context, ns, key, value string, _ time.Duration) error {
	m.values[ns+":"+key] = value
	return nil
}

func (m *memoryStore) Get(_ context.Context, ns, key string) (string, error) {
	v, ok := m.values[ns+":"+key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memoryStore) Delete(_ context.Context, ns, key string) error {
	delete(m.values, ns+":"+key)
	return nil
}

func TestIssueAndVerify(t *testing.T) {
	svc := New(newMemoryStore(), time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, PurposeRegister, "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}

	if err := svc.Verify(ctx, PurposeRegister, "user@example.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Codes are single use.
	err = svc.Verify(ctx, PurposeRegister, "user@example.com", code)
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired on reuse, got %v", err)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	svc := New(newMemoryStore(), time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, PurposePasswordReset, "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := svc.Verify(ctx, PurposePasswordReset, "user@example.com", wrong); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	// The stored code survives a wrong guess.
	if err := svc.Verify(ctx, PurposePasswordReset, "user@example.com", code); err != nil {
		t.Fatalf("verify after wrong guess: %v", err)
	}
}

func TestPurposesAreIsolated(t *testing.T) {
	svc := New(newMemoryStore(), time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, PurposeRegister, "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	err = svc.Verify(ctx, PurposePasswordReset, "user@example.com", code)
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("registration code must not redeem a reset, got %v", err)
	}
}
