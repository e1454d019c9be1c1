package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API calls by operation and outcome: success, rejected (non-2xx) or network.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Remote API calls by operation and outcome",
	}, []string{"operation", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Remote API call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// Cart mutations whose response arrived after a newer operation on the same good.
	CartSupersededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "superseded_total",
		Help:      "Cart responses discarded in favour of a newer operation",
	}, []string{"operation"})

	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "orders_total",
		Help:      "Order submissions by outcome",
	}, []string{"outcome"})

	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request",
		Help:       "Inbound request latency by route and status",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"route", "status"})
)

func ObserveUpstream(operation, outcome string, d time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func ObserveRequest(route string, d time.Duration, status int) {
	RequestMetrics.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Middleware records inbound latency labelled by the matched chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveRequest(route, time.Since(start), status)
	})
}
