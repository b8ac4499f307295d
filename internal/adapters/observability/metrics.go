package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "residences", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "residences", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StoreRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "residences", Name: "store_requests_total", Help: "Document store reads and writes."},
		[]string{"driver", "op", "status"}, // status: ok|not_found|error
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "residences", Name: "store_request_duration_seconds",
			Help:    "Document store request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "op"},
	)
	FallbackServed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "residences", Name: "fallback_served_total", Help: "Listings served from sample data."},
	)
	ReservationsSimulated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "residences", Name: "reservations_simulated_total", Help: "Reservation forms accepted (never transmitted)."},
	)
)

// MetricsServer serves reg on a side port, or returns nil when addr is empty.
// The caller owns its lifecycle.
func MetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StoreRequests, StoreLatency, FallbackServed, ReservationsSimulated)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveStore(driver, op, status string, dur time.Duration) {
	StoreRequests.WithLabelValues(driver, op, status).Inc()
	StoreLatency.WithLabelValues(driver, op).Observe(dur.Seconds())
}

func ObserveFallback()    { FallbackServed.Inc() }
func ObserveReservation() { ReservationsSimulated.Inc() }
