package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bundler/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BundlesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundles_submitted_total",
		Help: "Bundles accepted by the block engine for evaluation.",
	})

	BundleSubmitFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundle_submit_failures_total",
		Help: "Bundles the block engine refused or could not be reached for.",
	})

	BundleOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bundle_outcomes_total",
		Help: "Resolved bundle outcomes by status.",
	}, []string{"status"})

	BundleRejectionEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundle_rejection_events_total",
		Help: "Rejection events observed while waiting for a bundle result.",
	})

	ResultStreamErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundle_result_stream_errors_total",
		Help: "Errors reported by the bundle result stream.",
	})

	BundleAwaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bundle_await_seconds",
		Help:    "Time from submission until the bundle outcome resolved.",
		Buckets: []float64{0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6, 51.2},
	})

	MetricsItems = []prometheus.Collector{
		BundlesSubmitted,
		BundleSubmitFailures,
		BundleOutcomes,
		BundleRejectionEvents,
		ResultStreamErrors,
		BundleAwaitSeconds,
	}
)

type Metrics struct {
	httpAddress string
	registry    *prometheus.Registry
	httpServer  *http.Server
}

func NewMetrics(address string) *Metrics {
	return &Metrics{
		httpAddress: address,
		registry:    prometheus.NewRegistry(),
	}
}

func (m *Metrics) Start() {
	m.registry.MustRegister(MetricsItems...)

	router := mux.NewRouter()
	router.Path("/metrics").Handler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.httpServer = &http.Server{
		Addr:              m.httpAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go m.serve()
}

func (m *Metrics) serve() {
	logger.GlobalLogger.Info("Serving metrics", "addr", m.httpAddress)
	if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.GlobalLogger.Error("Metrics server stopped", "err", err)
	}
}

func (m *Metrics) Stop(ctx context.Context) error {
	if m.httpServer == nil {
		return nil
	}
	return m.httpServer.Shutdown(ctx)
}
