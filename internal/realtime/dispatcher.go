package realtime

import (
	"context"
	"encoding/json"

	"food-court/internal/common/logger"
	"food-court/internal/common/metrics"
	"food-court/internal/domain"
)

// EventOrderStatusUpdated is pushed to every connection subscribed to the
// order's owner or venue.
const EventOrderStatusUpdated = "order_status_updated"

type orderStatusPayload struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// Publisher re-publishes committed events to an external broker. Optional.
type Publisher interface {
	PublishStatusUpdate(ctx context.Context, ev *domain.StatusUpdate) error
}

// Dispatcher fans a committed status transition out to every interested
// live connection. It runs synchronously on the commit path: the HTTP
// handler calls Dispatch only after the store write is durable, and events
// for the same order are dispatched in commit order, so each connection's
// outbox sees them in commit order too.
type Dispatcher struct {
	registry *Registry
	bridge   Publisher
	lg       *logger.Logger
	met      *metrics.Metrics
}

func NewDispatcher(registry *Registry, bridge Publisher, lg *logger.Logger, met *metrics.Metrics) *Dispatcher {
	return &Dispatcher{registry: registry, bridge: bridge, lg: lg, met: met}
}

// Dispatch pushes ev to every connection subscribed to the owning user's
// key or the venue's key. Delivery is best-effort per connection: one dead
// or frozen peer is logged and skipped, the rest still get the event, and
// nothing here ever reaches the HTTP caller — the transition has already
// committed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *domain.StatusUpdate, userID, venueID int64) {
	d.met.EventsDispatched.Inc()

	data, err := json.Marshal(orderStatusPayload{OrderID: ev.OrderID, Status: ev.NewStatus.String()})
	if err != nil {
		d.lg.Error("event_marshal_failed", err, map[string]any{"order_id": ev.OrderID})
		return
	}
	env := Envelope{Event: EventOrderStatusUpdated, Data: data}

	seen := make(map[*Conn]struct{})
	for _, key := range []string{UserKey(userID), VenueKey(venueID)} {
		for _, c := range d.registry.Resolve(key) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if err := c.Push(env); err != nil {
				d.met.PushFailures.Inc()
				d.lg.Error("push_failed", err, map[string]any{
					"order_id": ev.OrderID, "key": key, "conn_id": c.ID(),
				})
			}
		}
	}

	if d.bridge != nil {
		if err := d.bridge.PublishStatusUpdate(ctx, ev); err != nil {
			d.lg.Error("bridge_publish_failed", err, map[string]any{"order_id": ev.OrderID})
		}
	}
}
