// Package metrics exports confirmation loop observations to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/types"
)

const namespace = "confirmtx"

// Compile-time interface check.
var _ poller.Recorder = (*Recorder)(nil)

// Recorder implements poller.Recorder with Prometheus collectors.
type Recorder struct {
	attempts  prometheus.Counter
	transient *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_attempts_total",
			Help:      "Status polls issued by the confirmation loop.",
		}),
		transient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transient_failures_total",
			Help:      "RPC failures swallowed and retried, by operation.",
		}, []string{"op"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Terminal confirmation outcomes, by kind.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirmation_seconds",
			Help:      "Time from first poll to terminal outcome.",
			Buckets:   []float64{0.4, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{r.attempts, r.transient, r.outcomes, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Attempt() {
	r.attempts.Inc()
}

func (r *Recorder) TransientFailure(op string) {
	r.transient.WithLabelValues(op).Inc()
}

func (r *Recorder) Outcome(kind types.OutcomeKind, elapsed time.Duration) {
	r.outcomes.WithLabelValues(kind.String()).Inc()
	r.latency.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}
