// Package metrics instruments the headers dictionaries with Prometheus
// counters and a histogram, grounded on the client_golang usage in the
// examples pack's dittofs repo. A nil *Recorder is always safe to call
// methods on: callers that don't want metrics simply never construct one.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder tracks known/unknown header lookups per direction and the
// popcount clear() observed when recycling a dictionary.
type Recorder struct {
	lookups   *prometheus.CounterVec
	clearBits prometheus.Histogram
}

// NewRecorder builds a Recorder and registers its collectors with reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fielddict",
			Name:      "header_lookups_total",
			Help:      "Header dictionary lookups by direction and whether the name matched a known header.",
		}, []string{"direction", "outcome"}),
		clearBits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fielddict",
			Name:      "header_clear_bits",
			Help:      "Number of set bits observed when a header dictionary was cleared.",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 16, 32, 64},
		}),
	}
	reg.MustRegister(r.lookups, r.clearBits)
	return r
}

// ObserveLookup records one get/set/try_append outcome. known is whether
// the SWAR matcher resolved the name to a registered header.
func (r *Recorder) ObserveLookup(direction string, known bool) {
	if r == nil {
		return
	}
	outcome := "unknown"
	if known {
		outcome = "known"
	}
	r.lookups.WithLabelValues(direction, outcome).Inc()
}

// ObserveClear records the popcount clear() walked (spec.md §4.7's
// documented 12-bit cutoff heuristic).
func (r *Recorder) ObserveClear(setBits int) {
	if r == nil {
		return
	}
	r.clearBits.Observe(float64(setBits))
}
