package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests          *prometheus.CounterVec
	EventsDispatched  prometheus.Counter
	PushFailures      prometheus.Counter
	ActiveConnections prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foodcourt",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		EventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foodcourt",
			Name:      "status_events_dispatched_total",
			Help:      "Committed status transitions handed to the fan-out dispatcher.",
		}),
		PushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "foodcourt",
			Name:      "push_failures_total",
			Help:      "Per-connection push failures during fan-out.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "foodcourt",
			Name:      "ws_connections_active",
			Help:      "Currently open websocket connections.",
		}),
	}
	prometheus.MustRegister(m.Requests, m.EventsDispatched, m.PushFailures, m.ActiveConnections)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
