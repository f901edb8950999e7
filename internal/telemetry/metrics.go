package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Wipe kinds used as the "kind" label on the wipe counter.
const (
	KindBytes = "bytes"
	KindValue = "value"
	KindSlice = "slice"
	KindGuard = "guard"
	KindFile  = "file"
)

var (
	wipesTotal      *prometheus.CounterVec
	wipedBytesTotal prometheus.Counter

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// Init registers all Prometheus metrics. Call once at startup when metrics
// are enabled; until then every Record call is a no-op, so the library adds
// no overhead for callers that never opt in.
func Init() {
	metricsOnce.Do(func() {
		wipesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memclear_wipes_total",
				Help: "Total number of clearing operations performed",
			},
			[]string{"kind"},
		)

		wipedBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "memclear_wiped_bytes_total",
				Help: "Total number of bytes overwritten by clearing operations",
			},
		)

		metricsRegistered = true
	})
}

// IsRegistered reports whether Init has run.
func IsRegistered() bool {
	return metricsRegistered
}

// RecordWipe records one clearing operation of the given kind covering n bytes.
func RecordWipe(kind string, n int) {
	if !metricsRegistered || wipesTotal == nil {
		return
	}
	wipesTotal.WithLabelValues(kind).Inc()
	wipedBytesTotal.Add(float64(n))
}

// WipesTotal returns the wipe counter for tests.
func WipesTotal() *prometheus.CounterVec {
	return wipesTotal
}

// WipedBytesTotal returns the wiped-bytes counter for tests.
func WipedBytesTotal() prometheus.Counter {
	return wipedBytesTotal
}
