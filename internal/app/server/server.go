package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	cataloghandlers "food-court/internal/catalog/handlers"
	catalogrepo "food-court/internal/catalog/repository"
	"food-court/internal/common/config"
	"food-court/internal/common/db"
	"food-court/internal/common/httpx"
	"food-court/internal/common/logger"
	"food-court/internal/common/metrics"
	"food-court/internal/common/mq"
	orderhandlers "food-court/internal/orders/handlers"
	orderrepo "food-court/internal/orders/repository"
	orderservice "food-court/internal/orders/service"
	"food-court/internal/realtime"
)

// Run wires the whole service and blocks until ctx is cancelled. One
// process-wide registry and dispatcher live for the lifetime of the
// server; they are created here and torn down when Run returns.
func Run(ctx context.Context, cfg config.App) error {
	lg := logger.New("food-court")

	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host})

	var bridge realtime.Publisher
	if cfg.Rabbit.Host != "" {
		mqc, err := mq.Dial(cfg.Rabbit.Host, cfg.Rabbit.Port, cfg.Rabbit.User, cfg.Rabbit.Pass)
		if err != nil {
			return err
		}
		defer mqc.Close()
		if err := mqc.DeclareAll(); err != nil {
			return err
		}
		bridge = mqc
		lg.Info("mq_connected", map[string]any{"host": cfg.Rabbit.Host})
	}

	met := metrics.New()
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, bridge, lg, met)
	gateway := realtime.NewGateway(registry, lg, met, cfg.Realtime.SendBuffer, cfg.Realtime.WriteTimeout())

	ordersSvc := orderservice.NewOrderService(orderrepo.NewOrdersPG(conn), lg)

	mux := http.NewServeMux()
	orderhandlers.NewOrderHandler(ordersSvc, dispatcher, lg).Register(mux)
	cataloghandlers.NewCatalogHandler(catalogrepo.NewCatalogPG(conn), lg).Register(mux)
	mux.Handle("/ws", gateway)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httpx.New(":"+strconv.Itoa(cfg.HTTP.Port), withRequestID(withRequestMetrics(mux, met)))
	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port})
	return srv.Run(ctx)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func withRequestMetrics(next http.Handler, met *metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The websocket upgrade hijacks the connection; wrapping its
		// ResponseWriter would break the Hijacker assertion.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		met.Requests.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}
