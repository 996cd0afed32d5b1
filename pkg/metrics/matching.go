package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchingMetrics records the cost profile of the pairwise matching batch.
type MatchingMetrics struct {
	duration           *prometheus.HistogramVec
	comparisons        prometheus.Counter
	eligibleReports    prometheus.Gauge
	extractionFailures prometheus.Counter
	matchesFound       prometheus.Counter
}

// NewMatchingMetrics registers the matching metrics on the provided registerer.
func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	if reg == nil {
		return &MatchingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matching_phase_duration_seconds",
		Help:    "Duration of the matching phases in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
	comparisons := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_pair_comparisons_total",
		Help: "Pairwise comparisons performed across all matching requests.",
	})
	eligible := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matching_eligible_reports",
		Help: "Eligible reports seen by the most recent matching batch.",
	})
	extractionFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_extraction_failures_total",
		Help: "Reports skipped because fingerprint extraction failed.",
	})
	matches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_matches_total",
		Help: "Accepted matches across all matching requests.",
	})
	reg.MustRegister(duration, comparisons, eligible, extractionFailures, matches)
	return &MatchingMetrics{
		duration:           duration,
		comparisons:        comparisons,
		eligibleReports:    eligible,
		extractionFailures: extractionFailures,
		matchesFound:       matches,
	}
}

// ObservePhase records the duration for the named phase (extraction, comparison).
func (m *MatchingMetrics) ObservePhase(phase string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(phase)).Observe(duration.Seconds())
}

// AddComparisons counts pairwise comparisons performed by one batch.
func (m *MatchingMetrics) AddComparisons(n int) {
	if m == nil || m.comparisons == nil || n <= 0 {
		return
	}
	m.comparisons.Add(float64(n))
}

// SetEligibleReports reports the batch size of the most recent run.
func (m *MatchingMetrics) SetEligibleReports(n int) {
	if m == nil || m.eligibleReports == nil {
		return
	}
	m.eligibleReports.Set(float64(n))
}

// IncExtractionFailure counts one skipped report.
func (m *MatchingMetrics) IncExtractionFailure() {
	if m == nil || m.extractionFailures == nil {
		return
	}
	m.extractionFailures.Inc()
}

// AddMatches counts accepted matches from one batch.
func (m *MatchingMetrics) AddMatches(n int) {
	if m == nil || m.matchesFound == nil || n <= 0 {
		return
	}
	m.matchesFound.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
