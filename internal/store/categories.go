package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoriesStore struct {
	db *pgxpool.Pool
}

func (s *CategoriesStore) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO categories (name, slug, description, is_active, sort_order)
	  VALUES ($1, $2, $3, $4, $5)
	  RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, c.Name, c.Slug, c.Description, c.IsActive, c.SortOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

// List returns categories in display order. With activeOnly set, hidden
// categories are filtered out for the public storefront.
func (s *CategoriesStore) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT id, name, slug, description, is_active, sort_order, created_at, updated_at
	  FROM categories
	  WHERE ($1 = false OR is_active)
	  ORDER BY sort_order, name
	`
	rows, err := s.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.SortOrder,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *CategoriesStore) Update(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  UPDATE categories
	  SET name = $2, slug = $3, description = $4, is_active = $5, sort_order = $6, updated_at = NOW()
	  WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.IsActive, c.SortOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CategoriesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
