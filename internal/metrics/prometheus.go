package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector provides Prometheus metrics for trace ingestion and reporting.
type Collector struct {
	tracesTotal     *prometheus.CounterVec
	eventsTotal     prometheus.Counter
	orphansTotal    prometheus.Counter
	abortsByCode    *prometheus.CounterVec
	reportDuration  prometheus.Histogram
	attempts        prometheus.Gauge
	representatives prometheus.Gauge
	registry        *prometheus.Registry
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	tracesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracereport_traces_total",
			Help: "Trace attempts by final status",
		},
		[]string{"status"},
	)

	eventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracereport_bytecode_events_total",
		Help: "Bytecode events recorded across all attempts",
	})

	orphansTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracereport_orphan_notifications_total",
		Help: "Notifications that arrived without a recording attempt",
	})

	abortsByCode := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracereport_aborts_total",
			Help: "Aborted attempts by error code",
		},
		[]string{"code"},
	)

	reportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracereport_report_duration_seconds",
		Help:    "Time spent generating a report",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})

	attempts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracereport_attempts",
		Help: "Raw trace attempts drained for the last report",
	})

	representatives := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracereport_representatives",
		Help: "Deduplicated traces in the last report",
	})

	registry.MustRegister(tracesTotal)
	registry.MustRegister(eventsTotal)
	registry.MustRegister(orphansTotal)
	registry.MustRegister(abortsByCode)
	registry.MustRegister(reportDuration)
	registry.MustRegister(attempts)
	registry.MustRegister(representatives)

	return &Collector{
		tracesTotal:     tracesTotal,
		eventsTotal:     eventsTotal,
		orphansTotal:    orphansTotal,
		abortsByCode:    abortsByCode,
		reportDuration:  reportDuration,
		attempts:        attempts,
		representatives: representatives,
		registry:        registry,
	}
}

// TraceBegun counts a new attempt.
func (m *Collector) TraceBegun() {
	m.tracesTotal.WithLabelValues("begun").Inc()
}

// EventsRecorded adds n recorded events.
func (m *Collector) EventsRecorded(n int) {
	m.eventsTotal.Add(float64(n))
}

// TraceCompleted counts a compiled attempt.
func (m *Collector) TraceCompleted() {
	m.tracesTotal.WithLabelValues("completed").Inc()
}

// TraceAborted counts an abandoned attempt.
func (m *Collector) TraceAborted(code int) {
	m.tracesTotal.WithLabelValues("aborted").Inc()
	m.abortsByCode.WithLabelValues(strconv.Itoa(code)).Inc()
}

// OrphanEvent counts a notification with no matching attempt.
func (m *Collector) OrphanEvent() {
	m.orphansTotal.Inc()
}

// ReportGenerated records one report generation pass.
func (m *Collector) ReportGenerated(attempts, representatives int, elapsed time.Duration) {
	m.reportDuration.Observe(elapsed.Seconds())
	m.attempts.Set(float64(attempts))
	m.representatives.Set(float64(representatives))
}

// Registry returns the Prometheus registry for this collector.
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
