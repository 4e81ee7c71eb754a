package domain

import "time"

type CreateOrderItem struct {
	MenuItemID int64    `json:"menu_item_id" validate:"required,gt=0"`
	Quantity   int      `json:"quantity" validate:"required,gt=0"`
	Modifiers  []string `json:"modifiers,omitempty" validate:"dive,max=64"`
}

type CreateOrderRequest struct {
	VenueID     int64             `json:"venue_id" validate:"required,gt=0"`
	StallID     int64             `json:"stall_id" validate:"required,gt=0"`
	UserID      int64             `json:"user_id" validate:"required,gt=0"`
	TableNumber *int              `json:"table_number,omitempty" validate:"omitempty,gt=0"`
	Items       []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	MenuItemID int64    `json:"menu_item_id"`
	Quantity   int      `json:"quantity"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	VenueID     int64               `json:"venue_id"`
	StallID     int64               `json:"stall_id"`
	UserID      int64               `json:"user_id"`
	TableNumber *int                `json:"table_number,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func NewOrderResponse(o *Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Modifiers:  it.Modifiers,
		})
	}
	return OrderResponse{
		ID:          o.ID,
		VenueID:     o.VenueID,
		StallID:     o.StallID,
		UserID:      o.UserID,
		TableNumber: o.TableNumber,
		Items:       items,
		Status:      o.Status.String(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
