// Package metrics exposes Prometheus counters for the waitlist and lottery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	waitlistOps   *prometheus.CounterVec
	draws         *prometheus.CounterVec
	drawWinners   prometheus.Counter
	replacements  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	counterDrift  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		waitlistOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_operations_total",
				Help: "Waitlist operations by kind and result",
			},
			[]string{"operation", "result"},
		),
		draws: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lottery_draws_total",
				Help: "Lottery draws by result",
			},
			[]string{"result"},
		),
		drawWinners: f.NewCounter(
			prometheus.CounterOpts{
				Name: "lottery_draw_winners_total",
				Help: "Entrants promoted to SELECTED by draws",
			},
		),
		replacements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lottery_replacements_total",
				Help: "Replacement promotions by result",
			},
			[]string{"result"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Notification attempts by outcome",
			},
			[]string{"outcome"},
		),
		opDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waitlist_operation_duration_seconds",
				Help:    "Latency of transactional waitlist and lottery operations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		counterDrift: f.NewCounter(
			prometheus.CounterOpts{
				Name: "waitlist_counter_repairs_total",
				Help: "Events whose current_entrants counter was repaired by reconciliation",
			},
		),
	}
}

func (m *Metrics) TrackWaitlistOp(operation string, err error) {
	if m == nil {
		return
	}
	m.waitlistOps.WithLabelValues(operation, Result(err)).Inc()
}

func (m *Metrics) TrackDraw(winners int, err error) {
	if m == nil {
		return
	}
	m.draws.WithLabelValues(Result(err)).Inc()
	if err == nil {
		m.drawWinners.Add(float64(winners))
	}
}

func (m *Metrics) TrackReplacement(err error) {
	if m == nil {
		return
	}
	m.replacements.WithLabelValues(Result(err)).Inc()
}

func (m *Metrics) TrackNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TrackCounterRepairs(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.counterDrift.Add(float64(n))
}

// ObserveSince records the time elapsed since start for operation.
func (m *Metrics) ObserveSince(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
