package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Product struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PricePaise  int64     `json:"price_paise"`
	Stock       int       `json:"stock"`
	ImageURLs   []string  `json:"image_urls"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductsStore struct {
	db *pgxpool.Pool
}

func (s *ProductsStore) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO products (owner_id, category_id, name, description, price_paise, stock, image_urls, is_active)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	  RETURNING id, created_at, updated_at
	`
	return s.db.QueryRow(
		ctx, query,
		p.OwnerID, p.CategoryID, p.Name, p.Description, p.PricePaise, p.Stock, p.ImageURLs, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *ProductsStore) GetByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT id, owner_id, category_id, name, description, price_paise, stock, image_urls, is_active, created_at, updated_at
	  FROM products WHERE id = $1
	`
	var p Product
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.CategoryID, &p.Name, &p.Description,
		&p.PricePaise, &p.Stock, &p.ImageURLs, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProductsStore) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	query := `
	  SELECT id, owner_id, category_id, name, description, price_paise, stock, image_urls, is_active, created_at, updated_at
	  FROM products WHERE category_id = $1 AND is_active ORDER BY created_at DESC
	`
	return s.list(ctx, query, categoryID)
}

func (s *ProductsStore) ListByOwner(ctx context.Context, ownerID string) ([]Product, error) {
	query := `
	  SELECT id, owner_id, category_id, name, description, price_paise, stock, image_urls, is_active, created_at, updated_at
	  FROM products WHERE owner_id = $1 ORDER BY created_at DESC
	`
	return s.list(ctx, query, ownerID)
}

func (s *ProductsStore) list(ctx context.Context, query string, arg any) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.CategoryID, &p.Name, &p.Description,
			&p.PricePaise, &p.Stock, &p.ImageURLs, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductsStore) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  UPDATE products
	  SET category_id = $2, name = $3, description = $4, price_paise = $5, stock = $6, is_active = $7, updated_at = NOW()
	  WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, p.ID, p.CategoryID, p.Name, p.Description, p.PricePaise, p.Stock, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductsStore) AddImageURL(ctx context.Context, id int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  UPDATE products SET image_urls = array_append(image_urls, $2), updated_at = NOW()
	  WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
