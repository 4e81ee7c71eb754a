package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"food-court/internal/common/logger"
	"food-court/internal/common/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type joinUserPayload struct {
	UserID int64 `json:"userId"`
}

type joinVenuePayload struct {
	VenueID int64 `json:"venueId"`
}

type leavePayload struct {
	Key string `json:"key"`
}

// Gateway owns the websocket endpoint. Each accepted connection gets a
// Conn with its own writer goroutine; the handler goroutine runs the read
// loop and tears everything down on disconnect.
type Gateway struct {
	registry     *Registry
	lg           *logger.Logger
	met          *metrics.Metrics
	sendBuffer   int
	writeTimeout time.Duration
}

func NewGateway(registry *Registry, lg *logger.Logger, met *metrics.Metrics, sendBuffer int, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		registry:     registry,
		lg:           lg,
		met:          met,
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.lg.Error("ws_upgrade_failed", err, nil)
		return
	}

	c := newConn(uuid.New().String(), ws, g.sendBuffer, g.writeTimeout)
	lg := g.lg.WithRequestID(c.ID())
	lg.Info("ws_connected", nil)
	g.met.ActiveConnections.Inc()
	go c.writeLoop()

	defer func() {
		// Order matters: mark the connection closed first so a concurrent
		// Push fails instead of landing in a drained outbox, then drop
		// every subscription before the handler exits. Any Resolve that
		// starts after this returns cannot observe the connection.
		c.close()
		g.registry.LeaveAll(c)
		g.met.ActiveConnections.Dec()
		lg.Info("ws_disconnected", nil)
	}()

	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			return
		}
		g.handleCommand(c, env, lg)
	}
}

func (g *Gateway) handleCommand(c *Conn, env Envelope, lg *logger.Logger) {
	switch env.Event {
	case "join_user":
		var p joinUserPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID <= 0 {
			lg.Error("bad_join_user", err, nil)
			return
		}
		g.registry.Join(UserKey(p.UserID), c)
		lg.Info("joined", map[string]any{"key": UserKey(p.UserID)})
	case "join_venue":
		var p joinVenuePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.VenueID <= 0 {
			lg.Error("bad_join_venue", err, nil)
			return
		}
		g.registry.Join(VenueKey(p.VenueID), c)
		lg.Info("joined", map[string]any{"key": VenueKey(p.VenueID)})
	case "leave":
		var p leavePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.Key == "" {
			lg.Error("bad_leave", err, nil)
			return
		}
		g.registry.Leave(p.Key, c)
		lg.Info("left", map[string]any{"key": p.Key})
	default:
		lg.Debug("unknown_event", map[string]any{"event": env.Event})
	}
}
