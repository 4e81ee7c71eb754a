package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"food-court/internal/common/db"
	"food-court/internal/domain"
)

type Orders interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// UpdateStatusCAS sets the status and updated_at only when the stored
	// status still equals expected. Returns false when no row matched,
	// which means either a lost race or a deleted order; the caller
	// re-reads to tell the two apart.
	UpdateStatusCAS(ctx context.Context, id int64, expected, next domain.Status, at time.Time) (bool, error)
}

type ordersPG struct {
	conn *db.Conn
}

func NewOrdersPG(conn *db.Conn) Orders { return &ordersPG{conn: conn} }

func (r *ordersPG) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (venue_id, stall_id, user_id, table_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, status, created_at, updated_at
	`, o.VenueID, o.StallID, o.UserID, o.TableNumber, domain.StatusPending).
		Scan(&o.ID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, modifiers)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, it.OrderID, it.MenuItemID, it.Quantity, it.Modifiers).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ordersPG) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.conn.QueryRow(ctx, `
		SELECT id, venue_id, stall_id, user_id, table_number, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.VenueID, &o.StallID, &o.UserID, &o.TableNumber, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT id, order_id, menu_item_id, quantity, modifiers
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &it.Modifiers); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *ordersPG) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, venue_id, stall_id, user_id, table_number, status, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.VenueID, &o.StallID, &o.UserID, &o.TableNumber, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ordersPG) UpdateStatusCAS(ctx context.Context, id int64, expected, next domain.Status, at time.Time) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, next, at, id, expected)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
