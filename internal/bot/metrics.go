package bot

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	metricsOnce sync.Once

	linesRecorded      prometheus.Counter
	correctionsApplied prometheus.Counter
	directivesRejected prometheus.Counter
	repliesLimited     prometheus.Counter
)

// initMetrics registers the bot's counters (idempotent).
func initMetrics() {
	metricsOnce.Do(func() {
		linesRecorded = promauto.NewCounter(prometheus.CounterOpts{
			Name: "sedbot_lines_recorded_total",
			Help: "Number of chat lines recorded into history",
		})
		correctionsApplied = promauto.NewCounter(prometheus.CounterOpts{
			Name: "sedbot_corrections_applied_total",
			Help: "Number of corrections applied and replied to",
		})
		directivesRejected = promauto.NewCounter(prometheus.CounterOpts{
			Name: "sedbot_directives_rejected_total",
			Help: "Number of directives rejected for bad escape sequences",
		})
		repliesLimited = promauto.NewCounter(prometheus.CounterOpts{
			Name: "sedbot_replies_rate_limited_total",
			Help: "Number of correction directives dropped by the reply rate limiter",
		})
	})
}

// ServeMetrics exposes /metrics on addr in the background.
func ServeMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
