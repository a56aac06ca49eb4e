package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Territory is one serviceable pincode and the operator responsible for it.
type Territory struct {
	Pincode    string         `json:"pincode"`
	Area       string         `json:"area"`
	City       string         `json:"city"`
	State      string         `json:"state"`
	OperatorID sql.NullString `json:"operator_id" swaggertype:"string"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type TerritoriesStore struct {
	db *pgxpool.Pool
}

func (s *TerritoriesStore) Create(ctx context.Context, t *Territory) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO territories (pincode, area, city, state, is_active)
	  VALUES ($1, $2, $3, $4, $5)
	  RETURNING created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, t.Pincode, t.Area, t.City, t.State, t.IsActive).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *TerritoriesStore) GetByPincode(ctx context.Context, pincode string) (*Territory, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT pincode, area, city, state, operator_id, is_active, created_at, updated_at
	  FROM territories WHERE pincode = $1
	`
	var t Territory
	err := s.db.QueryRow(ctx, query, pincode).Scan(
		&t.Pincode, &t.Area, &t.City, &t.State, &t.OperatorID, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TerritoriesStore) List(ctx context.Context) ([]Territory, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT pincode, area, city, state, operator_id, is_active, created_at, updated_at
	  FROM territories ORDER BY pincode
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var territories []Territory
	for rows.Next() {
		var t Territory
		if err := rows.Scan(
			&t.Pincode, &t.Area, &t.City, &t.State, &t.OperatorID, &t.IsActive,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		territories = append(territories, t)
	}
	return territories, rows.Err()
}

func (s *TerritoriesStore) Update(ctx context.Context, t *Territory) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  UPDATE territories SET area = $2, city = $3, state = $4, is_active = $5, updated_at = NOW()
	  WHERE pincode = $1
	`
	tag, err := s.db.Exec(ctx, query, t.Pincode, t.Area, t.City, t.State, t.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignOperator links a territory operator account to the pincode.
func (s *TerritoriesStore) AssignOperator(ctx context.Context, pincode, operatorID string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  UPDATE territories SET operator_id = NULLIF($2, ''), updated_at = NOW()
	  WHERE pincode = $1
	`
	tag, err := s.db.Exec(ctx, query, pincode, operatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
