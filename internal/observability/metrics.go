package observability

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK         = "ok"
	ResultNotFound   = "not_found"
	ResultTimeout    = "timeout"
	ResultMalformed  = "malformed"
	ResultBadAddress = "bad_address"
	ResultError      = "error"
)

var (
	registerOnce sync.Once

	resolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fileget",
			Subsystem: "resolve",
			Name:      "total",
			Help:      "Name-server lookups by result.",
		},
		[]string{"result"},
	)
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fileget",
			Subsystem: "fetch",
			Name:      "total",
			Help:      "File-server fetches by response status.",
		},
		[]string{"status"},
	)
	fetchBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fileget",
			Subsystem: "fetch",
			Name:      "bytes_total",
			Help:      "Response body bytes received.",
		},
	)
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fileget",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Fetch exchange duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(resolveTotal, fetchTotal, fetchBytes, fetchDuration)
	})
}

func RecordResolve(result string) {
	RegisterMetrics()
	resolveTotal.WithLabelValues(result).Inc()
}

// RecordFetch counts one exchange. status is the response status text, or a
// Result* value when no status line was read.
func RecordFetch(status string, bytes int, duration time.Duration) {
	RegisterMetrics()
	label := statusLabel(status)
	fetchTotal.WithLabelValues(label).Inc()
	fetchDuration.WithLabelValues(label).Observe(duration.Seconds())
	if bytes > 0 {
		fetchBytes.Add(float64(bytes))
	}
}

// WriteMetrics dumps the default registry in the Prometheus text format.
func WriteMetrics(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics (%s): %w", path, err)
	}
	return nil
}

func statusLabel(status string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), " ", "_")
}
