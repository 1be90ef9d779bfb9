package metrics

import "github.com/prometheus/client_golang/prometheus"

// AvailabilityMetrics exposes counters/histograms for schedule resolution.
type AvailabilityMetrics struct {
	resolveTotal    *prometheus.CounterVec
	saveTotal       *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calmora",
			Subsystem: "availability",
			Name:      "resolve_total",
			Help:      "Total date resolutions by schedule source",
		}, []string{"source"}),
		saveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calmora",
			Subsystem: "availability",
			Name:      "save_total",
			Help:      "Total weekly schedule saves by outcome",
		}, []string{"outcome"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "calmora",
			Subsystem: "availability",
			Name:      "resolve_duration_seconds",
			Help:      "Latency of effective-availability resolution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolveTotal, m.saveTotal, m.resolveDuration)
	return m
}

func (m *AvailabilityMetrics) ObserveResolve(source string, seconds float64) {
	if m == nil {
		return
	}
	m.resolveTotal.WithLabelValues(source).Inc()
	m.resolveDuration.WithLabelValues(source).Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveSave(outcome string) {
	if m == nil {
		return
	}
	m.saveTotal.WithLabelValues(outcome).Inc()
}

// BookingMetrics counts booking lifecycle events.
type BookingMetrics struct {
	createdTotal   *prometheus.CounterVec
	cancelledTotal prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calmora",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total bookings created by session type",
		}, []string{"session_type"}),
		cancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calmora",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Total bookings cancelled",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.cancelledTotal)
	return m
}

func (m *BookingMetrics) ObserveCreated(sessionType string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(sessionType).Inc()
}

func (m *BookingMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancelledTotal.Inc()
}
