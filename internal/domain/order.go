package domain

import "time"

type Order struct {
	ID          int64
	VenueID     int64
	StallID     int64
	UserID      int64
	TableNumber *int
	Items       []OrderItem
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Quantity   int
	Modifiers  []string
}

type Venue struct {
	ID   int64
	Name string
}

type Stall struct {
	ID      int64
	VenueID int64
	Name    string
}

type MenuItem struct {
	ID         int64
	StallID    int64
	Name       string
	PriceCents int64
	Available  bool
}
