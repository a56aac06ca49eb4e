package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Order lifecycle statuses. Transitions are forward only, terminal states
// are delivered and cancelled.
const (
	OrderPlaced     = "placed"
	OrderAccepted   = "accepted"
	OrderDispatched = "dispatched"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

type OrderItem struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PricePaise int64  `json:"price_paise"`
}

// Order snapshots the purchased items; later product edits do not rewrite
// order history.
type Order struct {
	ID         int64       `json:"id"`
	Number     string      `json:"number"`
	CustomerID string      `json:"customer_id"`
	Pincode    string      `json:"pincode"`
	Status     string      `json:"status"`
	TotalPaise int64       `json:"total_paise"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type OrdersStore struct {
	db *pgxpool.Pool
}

func (s *OrdersStore) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `
	  INSERT INTO orders (number, customer_id, pincode, status, total_paise, items)
	  VALUES ($1, $2, $3, $4, $5, $6)
	  RETURNING id, created_at, updated_at
	`
	return s.db.QueryRow(ctx, query, o.Number, o.CustomerID, o.Pincode, o.Status, o.TotalPaise, items).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (s *OrdersStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  SELECT id, number, customer_id, pincode, status, total_paise, items, created_at, updated_at
	  FROM orders WHERE id = $1
	`
	var (
		o     Order
		items []byte
	)
	err := s.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.Pincode, &o.Status, &o.TotalPaise, &items,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}

func (s *OrdersStore) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	query := `
	  SELECT id, number, customer_id, pincode, status, total_paise, items, created_at, updated_at
	  FROM orders WHERE customer_id = $1 ORDER BY created_at DESC
	`
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListByPincodes returns orders in the given status within a set of
// territory pincodes, for delivery partner work queues.
func (s *OrdersStore) ListByPincodes(ctx context.Context, status string, pincodes []string) ([]Order, error) {
	query := `
	  SELECT id, number, customer_id, pincode, status, total_paise, items, created_at, updated_at
	  FROM orders WHERE status = $1 AND pincode = ANY($2) ORDER BY created_at
	`
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, status, pincodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var (
			o     Order
			items []byte
		)
		if err := rows.Scan(
			&o.ID, &o.Number, &o.CustomerID, &o.Pincode, &o.Status, &o.TotalPaise, &items,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *OrdersStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
