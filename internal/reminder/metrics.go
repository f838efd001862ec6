package reminder

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the scheduler's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	fired      prometheus.Counter
	scanErrors *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteminder_reminders_fired_total",
			Help: "Reminders delivered and marked notified.",
		}),
		scanErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteminder_reminder_scan_errors_total",
			Help: "Problems met while scanning reminders, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "noteminder_reminder_scan_duration_seconds",
			Help:    "Duration of a full reminder scan.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.fired, m.scanErrors, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

const (
	reasonParse  = "parse"
	reasonNotify = "notify"
	reasonMark   = "mark"
	reasonLoad   = "load"
)

func (m *Metrics) incFired() {
	if m != nil {
		m.fired.Inc()
	}
}

func (m *Metrics) incError(reason string) {
	if m != nil {
		m.scanErrors.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) observe(seconds float64) {
	if m != nil {
		m.duration.Observe(seconds)
	}
}
