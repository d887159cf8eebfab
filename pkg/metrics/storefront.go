package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for order submissions.
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// Storefront records cart and checkout activity. A nil *Storefront is a no-op.
type Storefront struct {
	cartMutations *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	submitLatency *prometheus.HistogramVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	submitLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_order_submit_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(cartMutations, submissions, submitLatency)
	return &Storefront{
		cartMutations: cartMutations,
		submissions:   submissions,
		submitLatency: submitLatency,
	}
}

// IncCartMutation counts a cart operation such as "add" or "remove".
func (s *Storefront) IncCartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveSubmission counts an order submission and records its latency.
func (s *Storefront) ObserveSubmission(outcome string, duration time.Duration) {
	if s == nil || s.submissions == nil {
		return
	}
	label := normalizeLabel(outcome)
	s.submissions.WithLabelValues(label).Inc()
	s.submitLatency.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
