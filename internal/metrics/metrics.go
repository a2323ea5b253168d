package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autodialer/internal/calls"
)

const (
	callDurationBucketStart  = 0.001
	callDurationBucketFactor = 4.0
	callDurationBucketCount  = 10
)

// Metrics owns the dialer collectors on a private registry.
// It implements dialer.Observer.
type Metrics struct {
	registry *prometheus.Registry

	Attempts        *prometheus.CounterVec
	CallsFinalized  *prometheus.CounterVec
	CallDuration    *prometheus.HistogramVec
	ContactsLoaded  prometheus.Counter
	ContactsDropped prometheus.Counter
	QuotaRejections prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_attempts_total",
				Help: "Simulated dial attempts by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		CallsFinalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_calls_finalized_total",
				Help: "Call records moved to history by mode and terminal status",
			},
			[]string{"mode", "status"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dialer_call_duration_seconds",
				Help: "Wall-clock duration of finalized call records",
				Buckets: prometheus.ExponentialBuckets(
					callDurationBucketStart,
					callDurationBucketFactor,
					callDurationBucketCount,
				),
			},
			[]string{"mode"},
		),
		ContactsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contacts_imported_total",
			Help: "Contacts that survived normalization",
		}),
		ContactsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contacts_dropped_total",
			Help: "Source rows dropped for lacking a usable phone number",
		}),
		QuotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dialer_quota_rejections_total",
			Help: "Dial requests refused by the hourly call quota",
		}),
	}
	m.registry.MustRegister(
		m.Attempts,
		m.CallsFinalized,
		m.CallDuration,
		m.ContactsLoaded,
		m.ContactsDropped,
		m.QuotaRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AttemptMade(mode calls.Mode, outcome calls.Outcome) {
	m.Attempts.WithLabelValues(string(mode), string(outcome)).Inc()
}

func (m *Metrics) CallFinalized(rec calls.CallRecord) {
	base := rec.Base()
	m.CallsFinalized.WithLabelValues(string(rec.Mode()), string(base.Status.State)).Inc()
	m.CallDuration.WithLabelValues(string(rec.Mode())).Observe(base.Duration)
}

func (m *Metrics) ContactsImported(imported, dropped int) {
	m.ContactsLoaded.Add(float64(imported))
	m.ContactsDropped.Add(float64(dropped))
}

func (m *Metrics) QuotaRejected() { m.QuotaRejections.Inc() }
