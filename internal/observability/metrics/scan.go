package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ScanMetrics struct {
	registry *prometheus.Registry

	scanTotal    *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	scanInFlight prometheus.Gauge
	queueLag     *prometheus.HistogramVec

	gatewayCalls   *prometheus.CounterVec
	matchesPerScan *prometheus.HistogramVec
	overallScore   *prometheus.HistogramVec
}

func NewScanMetrics(service string) *ScanMetrics {
	registry := prometheus.NewRegistry()

	scanTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "scans_total",
			Help:      "Total finished scans by status.",
		},
		[]string{"service", "status"},
	)
	scanDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "scan_duration_seconds",
			Help:      "Scan processing duration in seconds by status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	scanInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "scans_in_flight",
			Help:      "Number of scans currently processing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "queue_lag_seconds",
			Help:      "Delay between scan request enqueue and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	gatewayCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "originality",
			Subsystem: "gateway",
			Name:      "provider_calls_total",
			Help:      "Total reference provider calls by outcome.",
		},
		[]string{"service", "provider", "outcome"},
	)
	matchesPerScan := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "matches_per_scan",
			Help:      "Distribution of flagged sentences per completed scan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"service"},
	)
	overallScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "originality",
			Subsystem: "scan",
			Name:      "overall_score",
			Help:      "Distribution of overall similarity scores for completed scans.",
			Buckets:   []float64{0, 5, 10, 15, 20, 25, 30, 40, 50, 65, 80, 100},
		},
		[]string{"service"},
	)

	registry.MustRegister(scanTotal, scanDuration, scanInFlight, queueLag, gatewayCalls, matchesPerScan, overallScore)

	return &ScanMetrics{
		registry:       registry,
		scanTotal:      scanTotal,
		scanDuration:   scanDuration,
		scanInFlight:   scanInFlight,
		queueLag:       queueLag,
		gatewayCalls:   gatewayCalls,
		matchesPerScan: matchesPerScan,
		overallScore:   overallScore,
	}
}

func (m *ScanMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ScanMetrics) StartScan() {
	m.scanInFlight.Inc()
}

func (m *ScanMetrics) FinishScan(service string, duration time.Duration, err error) {
	m.scanInFlight.Dec()

	status := "completed"
	if err != nil {
		status = "failed"
	}

	m.scanTotal.WithLabelValues(service, status).Inc()
	m.scanDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *ScanMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

// RecordProviderCall feeds the gateway observer; outcome is one of
// ok, timeout, not_configured or error.
func (m *ScanMetrics) RecordProviderCall(service, provider, outcome string) {
	if provider == "" {
		provider = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.gatewayCalls.WithLabelValues(service, provider, outcome).Inc()
}

func (m *ScanMetrics) RecordScanOutcome(service string, matchCount int, overallScore float64) {
	m.matchesPerScan.WithLabelValues(service).Observe(float64(matchCount))
	if overallScore >= 0 {
		m.overallScore.WithLabelValues(service).Observe(overallScore)
	}
}
