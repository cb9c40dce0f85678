package differ

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the invocation counter.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeNoOutput = "no_output"
)

// Metrics counts diff invocations and their latency.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the diff collectors with reg. Collectors already
// registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	invocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odiffkit",
		Name:      "diff_invocations_total",
		Help:      "Number of native diff invocations by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odiffkit",
		Name:      "diff_duration_seconds",
		Help:      "Wall time spent in the native diff routine.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	if err := reg.Register(invocations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		invocations = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		duration = are.ExistingCollector.(prometheus.Histogram)
	}

	return &Metrics{invocations: invocations, duration: duration}, nil
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
