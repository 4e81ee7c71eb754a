package repository

import (
	"context"
	"fmt"

	"food-court/internal/common/db"
	"food-court/internal/domain"
)

// Catalog is read-only here: editing venues, stalls and menus belongs to
// the admin tooling, not this service.
type Catalog interface {
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	ListStalls(ctx context.Context, venueID int64) ([]domain.Stall, error)
	ListMenu(ctx context.Context, stallID int64) ([]domain.MenuItem, error)
}

type catalogPG struct {
	conn *db.Conn
}

func NewCatalogPG(conn *db.Conn) Catalog { return &catalogPG{conn: conn} }

func (r *catalogPG) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, name FROM venues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select venues: %w", err)
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *catalogPG) ListStalls(ctx context.Context, venueID int64) ([]domain.Stall, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, venue_id, name FROM stalls WHERE venue_id = $1 ORDER BY name
	`, venueID)
	if err != nil {
		return nil, fmt.Errorf("select stalls: %w", err)
	}
	defer rows.Close()

	var out []domain.Stall
	for rows.Next() {
		var s domain.Stall
		if err := rows.Scan(&s.ID, &s.VenueID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan stall: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *catalogPG) ListMenu(ctx context.Context, stallID int64) ([]domain.MenuItem, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, stall_id, name, price_cents, available
		FROM menu_items WHERE stall_id = $1 ORDER BY name
	`, stallID)
	if err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.StallID, &m.Name, &m.PriceCents, &m.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
