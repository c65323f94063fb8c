package notify

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics turns ledger events into Prometheus series.
type Metrics struct {
	events      *prometheus.CounterVec
	movements   *prometheus.CounterVec
	tillOpen    prometheus.Gauge
	variance    prometheus.Gauge
	withdrawals prometheus.Counter
}

// NewMetrics registers the ledger collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_ledger_events_total",
			Help: "Ledger events published, by type.",
		}, []string{"type"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_till_movements_total",
			Help: "Till movements recorded, by direction and payment method.",
		}, []string{"direction", "method"}),
		tillOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pos_till_session_open",
			Help: "1 while a till session is open.",
		}),
		variance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pos_till_last_close_variance",
			Help: "Counted minus expected cash of the last closed session.",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_till_withdrawals_total",
			Help: "Manual cash withdrawals.",
		}),
	}
	reg.MustRegister(m.events, m.movements, m.tillOpen, m.variance, m.withdrawals)
	return m
}

func (m *Metrics) Notify(_ context.Context, event domain.Event) error {
	m.events.WithLabelValues(string(event.Type)).Inc()

	switch p := event.Payload.(type) {
	case domain.SessionOpenedPayload:
		m.tillOpen.Set(1)
	case domain.SessionClosedPayload:
		m.tillOpen.Set(0)
		m.variance.Set(p.Totals.Variance.InexactFloat64())
	case domain.MovementRecordedPayload:
		method := p.Method
		if method == "" {
			method = "none"
		}
		m.movements.WithLabelValues(string(p.Direction), method).Inc()
	case domain.CashWithdrawnPayload:
		m.withdrawals.Inc()
	}
	return nil
}
