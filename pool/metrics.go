package pool

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// poolMetrics counts accepted and rejected transactions. With a nil
// registerer the collectors still work but stay unregistered, which keeps
// multiple pools in one process (and in tests) from colliding on the default
// registry.
type poolMetrics struct {
	deposits    prometheus.Counter
	withdrawals *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	leaves      prometheus.Gauge
}

func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	f := promauto.With(reg)
	return &poolMetrics{
		deposits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "privatepay",
			Subsystem: "pool",
			Name:      "deposits_total",
			Help:      "Accepted deposits.",
		}),
		withdrawals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privatepay",
			Subsystem: "pool",
			Name:      "withdrawals_total",
			Help:      "Completed withdrawals by bridge mode.",
		}, []string{"mode"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privatepay",
			Subsystem: "pool",
			Name:      "rejections_total",
			Help:      "Rejected transactions by operation and reason.",
		}, []string{"op", "reason"}),
		leaves: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "privatepay",
			Subsystem: "pool",
			Name:      "tree_leaves",
			Help:      "Commitments inserted into the tree.",
		}),
	}
}

func (m *poolMetrics) reject(op string, err error) {
	m.rejections.WithLabelValues(op, reasonLabel(err)).Inc()
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFieldElement):
		return "invalid_field_element"
	case errors.Is(err, ErrTreeFull):
		return "tree_full"
	case errors.Is(err, ErrUnknownRoot):
		return "unknown_root"
	case errors.Is(err, ErrNullifierAlreadyUsed):
		return "nullifier_used"
	case errors.Is(err, ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, ErrInvalidRelayerFee):
		return "invalid_relayer_fee"
	case errors.Is(err, ErrPoolNotConfiguredForMode):
		return "mode_not_configured"
	case errors.Is(err, ErrDispatchFailed):
		return "dispatch_failed"
	case errors.Is(err, ErrReentrantCall):
		return "reentrant_call"
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrInsufficientAllowance):
		return "insufficient_funds"
	default:
		return "other"
	}
}
