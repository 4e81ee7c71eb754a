package domain

import "time"

// StatusUpdate is produced once per committed status transition. It is
// immutable after creation: the state machine builds it from the row it
// just wrote and hands it to the caller for fan-out.
type StatusUpdate struct {
	OrderID   int64     `json:"order_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}
