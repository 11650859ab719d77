// Package metrics holds the process Prometheus collectors.
//
// HTTP:
//   - interndesk_http_requests_total{method,route,status}
//   - interndesk_http_request_duration_seconds{method,route}
//
// Recommendations:
//   - interndesk_recommendations_total{outcome}
//   - interndesk_recommendation_duration_seconds
//   - interndesk_recommendation_results
//
// Catalog:
//   - interndesk_internships{status}
//   - interndesk_applications_total
//   - interndesk_chat_replies_total{kind}
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"interndesk/internal/domain"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interndesk_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interndesk_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"method", "route"})

	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interndesk_recommendations_total",
		Help: "Recommendation requests by outcome.",
	}, []string{"outcome"})

	RecommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interndesk_recommendation_duration_seconds",
		Help:    "Time to fetch and rank one recommendation request.",
		Buckets: prometheus.DefBuckets,
	})

	RecommendationResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interndesk_recommendation_results",
		Help:    "Number of results returned per recommendation request.",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	Internships = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "interndesk_internships",
		Help: "Catalog size by lifecycle status.",
	}, []string{"status"})

	Applications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interndesk_applications_total",
		Help: "Successful internship applications.",
	})

	ChatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interndesk_chat_replies_total",
		Help: "Chat replies by kind (catalog, ai, error).",
	}, []string{"kind"})
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRecommendation records one recommendation request.
func ObserveRecommendation(outcome string, results int, d time.Duration) {
	Recommendations.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(d.Seconds())
	if outcome == "ok" {
		RecommendationResults.Observe(float64(results))
	}
}

type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}

// RefreshCatalog sets the catalog gauges from the store.
func RefreshCatalog(ctx context.Context, s StatusCounter) error {
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		return err
	}
	for status, n := range counts {
		Internships.WithLabelValues(string(status)).Set(float64(n))
	}
	return nil
}
