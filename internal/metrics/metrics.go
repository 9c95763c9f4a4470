package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_search_queries_total",
			Help: "Total number of SERP queries issued",
		},
		[]string{"backend", "outcome"},
	)

	SearchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_search_results_total",
			Help: "Total raw URLs returned by SERP backends",
		},
		[]string{"backend"},
	)

	CandidatesKeptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_candidates_kept_total",
			Help: "Supplier candidates retained after filtering and dedup",
		},
		[]string{"brand"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_fetches_total",
			Help: "Total page fetches executed",
		},
		[]string{"status", "blocked"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prospector_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	SubpageFetchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospector_subpage_fetches_total",
			Help: "Fetches performed during bounded subpage crawls",
		},
	)

	FieldsFilledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospector_fields_filled_total",
			Help: "Record fields filled, by field and page level",
		},
		[]string{"field", "level"},
	)
)

// RecordFetch updates fetch metrics for a completed page fetch.
func RecordFetch(statusCode int, failed, blocked bool, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	if failed {
		status = "error"
	}
	FetchesTotal.WithLabelValues(status, strconv.FormatBool(blocked)).Inc()
	FetchDuration.Observe(duration.Seconds())
}

// Server encapsulates an HTTP server exposing /metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
