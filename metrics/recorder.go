package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "giftbot"

// Recorder counts what happens to trade offers. A nil *Recorder records nothing.
type Recorder struct {
	offers         *prometheus.CounterVec
	actionFailures *prometheus.CounterVec
	priceLookups   *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

func NewRecorder(registerer prometheus.Registerer) *Recorder {
	recorder := &Recorder{
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_total",
			Help:      "Trade offers handled, by decision.",
		}, []string{"decision"}),
		actionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_action_failures_total",
			Help:      "Failed trade actions, by action.",
		}, []string{"action"}),
		priceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Market price lookups, by resulting status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification dispatches, by result.",
		}, []string{"result"}),
	}

	registerer.MustRegister(
		recorder.offers,
		recorder.actionFailures,
		recorder.priceLookups,
		recorder.notifications,
	)

	return recorder
}

func (r *Recorder) OfferHandled(decision string) {
	if r == nil {
		return
	}
	r.offers.WithLabelValues(decision).Inc()
}

func (r *Recorder) ActionFailed(action string) {
	if r == nil {
		return
	}
	r.actionFailures.WithLabelValues(action).Inc()
}

func (r *Recorder) PriceLookedUp(status string) {
	if r == nil {
		return
	}
	r.priceLookups.WithLabelValues(status).Inc()
}

func (r *Recorder) Notified(success bool) {
	if r == nil {
		return
	}
	result := "sent"
	if !success {
		result = "failed"
	}
	r.notifications.WithLabelValues(result).Inc()
}
