// Package telemetry exposes Prometheus metrics for the service and an HTTP
// middleware recording request durations.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	appends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaylog_appends_total",
		Help: "Messages appended, labeled by whether they merged into an existing entry.",
	}, []string{"merged"})

	deletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaylog_deletes_total",
		Help: "Messages deleted, labeled by delete mode.",
	}, []string{"mode"})

	relocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaylog_compaction_relocated_total",
		Help: "Messages relocated from live to archive by compaction.",
	})

	compactionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaylog_compaction_runs_total",
		Help: "Compaction runs, labeled by outcome.",
	}, []string{"outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relaylog_http_request_duration_seconds",
		Help:    "HTTP request latency by method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// RecordAppend counts a message append.
func RecordAppend(merged bool) {
	appends.WithLabelValues(strconv.FormatBool(merged)).Inc()
}

// RecordDelete counts removed messages for the given mode
// ("one", "many", "sender", "older_than").
func RecordDelete(mode string, count int) {
	deletes.WithLabelValues(mode).Add(float64(count))
}

// RecordCompaction counts a compaction run and its relocations.
func RecordCompaction(relocated int, err error) {
	relocations.Add(float64(relocated))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	compactionRuns.WithLabelValues(outcome).Inc()
}

// Handler returns the metrics scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request durations. The route template is used as the
// path label when available so ids do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if tmpl := routeTemplate(r); tmpl != "" {
			path = tmpl
		}
		httpDuration.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
