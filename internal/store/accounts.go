package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"valuefind/internal/roles"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail = errors.New("an account with that email already exists")
	ErrDuplicatePhone = errors.New("an account with that phone number already exists")
)

// Account is the server-side projection of one marketplace identity. Its
// role document lives in a single JSONB column guarded by a version counter;
// current_role_kind mirrors the session's active role so re-fetches observe
// role switches.
type Account struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Name         string         `json:"name"`
	Password     password       `json:"-"`
	PrimaryRole  roles.Kind     `json:"primary_role"`
	CurrentRole  roles.Kind     `json:"current_role"`
	Roles        roles.Map      `json:"roles"`
	AvatarURL    sql.NullString `json:"avatar_url" swaggertype:"string"`
	RefreshToken string         `json:"-"`
	Version      int64          `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.text = &text
	p.hash = hash
	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type AccountsStore struct {
	db *pgxpool.Pool
}

func (s *AccountsStore) Create(ctx context.Context, account *Account) error {
	query := `
	  INSERT INTO accounts (id, email, phone, name, password, primary_role, current_role_kind, roles)
	  VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
	  RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	doc, err := json.Marshal(account.Roles)
	if err != nil {
		return fmt.Errorf("marshal role document: %w", err)
	}

	err = s.db.QueryRow(
		ctx, query,
		account.ID, account.Email, account.Phone, account.Name,
		account.Password.hash, account.PrimaryRole, doc,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "accounts_email_key":
				return ErrDuplicateEmail
			case "accounts_phone_key":
				return ErrDuplicatePhone
			}
			return ErrConflict
		}
		return err
	}
	account.CurrentRole = account.PrimaryRole
	account.Version = 1
	return nil
}

func (s *AccountsStore) GetByID(ctx context.Context, id string) (*Account, error) {
	query := `
	  SELECT id, email, phone, name, password, primary_role, current_role_kind, roles,
	         avatar_url, refresh_token, version, created_at, updated_at
	  FROM accounts WHERE id = $1
	`
	return s.getOne(ctx, query, id)
}

func (s *AccountsStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
	  SELECT id, email, phone, name, password, primary_role, current_role_kind, roles,
	         avatar_url, refresh_token, version, created_at, updated_at
	  FROM accounts WHERE email = $1
	`
	return s.getOne(ctx, query, email)
}

func (s *AccountsStore) getOne(ctx context.Context, query string, arg any) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		account Account
		doc     []byte
		refresh sql.NullString
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.Phone, &account.Name,
		&account.Password.hash, &account.PrimaryRole, &account.CurrentRole, &doc,
		&account.AvatarURL, &refresh, &account.Version,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(doc, &account.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal role document: %w", err)
	}
	account.RefreshToken = refresh.String
	return &account, nil
}

func (s *AccountsStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (s *AccountsStore) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone = $1)`, phone)
}

func (s *AccountsStore) exists(ctx context.Context, query, arg string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx, query, arg).Scan(&exists)
	return exists, err
}

// RoleDocument reads the role map together with its version for a
// subsequent compare-and-swap.
func (s *AccountsStore) RoleDocument(ctx context.Context, id string) (roles.Map, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		doc     []byte
		version int64
	)
	err := s.db.QueryRow(ctx, `SELECT roles, version FROM accounts WHERE id = $1`, id).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	m := roles.Map{}
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, 0, fmt.Errorf("unmarshal role document: %w", err)
	}
	return m, version, nil
}

// CompareAndSwapRoles writes the role document only when the stored version
// is unchanged, bumping it on success. Reports whether the swap applied.
func (s *AccountsStore) CompareAndSwapRoles(ctx context.Context, id string, m roles.Map, version int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	doc, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("marshal role document: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET roles = $2, version = version + 1, updated_at = NOW()
	  WHERE id = $1 AND version = $3
	`, id, doc, version)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *AccountsStore) CurrentRole(ctx context.Context, id string) (roles.Kind, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var kind roles.Kind
	err := s.db.QueryRow(ctx, `SELECT current_role_kind FROM accounts WHERE id = $1`, id).Scan(&kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return kind, nil
}

// SetCurrentRole persists the session's active role. Plain last-writer-wins:
// concurrent switches only affect the account's own navigation context.
func (s *AccountsStore) SetCurrentRole(ctx context.Context, id string, kind roles.Kind) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET current_role_kind = $2, updated_at = NOW() WHERE id = $1
	`, id, kind)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountsStore) SetRefreshToken(ctx context.Context, id string, hashed string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET refresh_token = NULLIF($2, ''), updated_at = NOW() WHERE id = $1
	`, id, hashed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountsStore) SetPassword(ctx context.Context, id string, hash []byte) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET password = $2, updated_at = NOW() WHERE id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountsStore) SetAvatarURL(ctx context.Context, id string, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET avatar_url = $2, updated_at = NOW() WHERE id = $1
	`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountsStore) UpdateProfile(ctx context.Context, id, name, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
	  UPDATE accounts SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1
	`, id, name, phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePhone
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByVerificationState returns accounts holding at least one role in the
// given review state, for the admin verification queue.
func (s *AccountsStore) ListByVerificationState(ctx context.Context, state roles.VerificationState) ([]Account, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT id, email, phone, name, primary_role, current_role_kind, roles, created_at, updated_at
	  FROM accounts a
	  WHERE EXISTS (
	    SELECT 1 FROM jsonb_each(a.roles) r
	    WHERE r.value ->> 'verification' = $1
	  )
	  ORDER BY created_at
	`
	rows, err := s.db.Query(ctx, query, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var (
			account Account
			doc     []byte
		)
		if err := rows.Scan(
			&account.ID, &account.Email, &account.Phone, &account.Name,
			&account.PrimaryRole, &account.CurrentRole, &doc,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, &account.Roles); err != nil {
			return nil, fmt.Errorf("unmarshal role document: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
