package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FluxMetrics holds all Prometheus metrics for the fluxagg module
type FluxMetrics struct {
	// Submission metrics
	Submissions          prometheus.Counter
	SubmissionRejections *prometheus.CounterVec

	// Round metrics
	RoundsStarted  *prometheus.CounterVec
	RoundsTimedOut prometheus.Counter
	LatestAnswer   prometheus.Gauge
	LatestRoundID  prometheus.Gauge
	ReportingRound prometheus.Gauge
	AnswersUpdated prometheus.Counter

	// Funds metrics
	PaymentsTotal  prometheus.Counter
	AvailableFunds prometheus.Gauge
	AllocatedFunds prometheus.Gauge

	// Oracle set and validator metrics
	OracleCount       prometheus.Gauge
	ValidatorFailures prometheus.Counter
}

var (
	fluxMetricsOnce sync.Once
	fluxMetrics     *FluxMetrics
)

// NewFluxMetrics creates and registers fluxagg metrics (singleton pattern)
func NewFluxMetrics() *FluxMetrics {
	fluxMetricsOnce.Do(func() {
		fluxMetrics = &FluxMetrics{
			Submissions: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "submissions_total",
					Help:      "Accepted oracle submissions",
				},
			),
			SubmissionRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "submission_rejections_total",
					Help:      "Rejected oracle submissions by reason",
				},
				[]string{"reason"},
			),
			RoundsStarted: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "rounds_started_total",
					Help:      "Rounds started by initiator kind",
				},
				[]string{"initiator"},
			),
			RoundsTimedOut: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "rounds_timed_out_total",
					Help:      "Rounds closed by timeout before reaching quorum",
				},
			),
			LatestAnswer: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "latest_answer",
					Help:      "Most recent round answer",
				},
			),
			LatestRoundID: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "latest_round_id",
					Help:      "Id of the most recently answered round",
				},
			),
			ReportingRound: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "reporting_round_id",
					Help:      "Id of the round currently collecting submissions",
				},
			),
			AnswersUpdated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "answers_updated_total",
					Help:      "Round answer computations",
				},
			),
			PaymentsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "payments_total",
					Help:      "Sum of payments credited to oracles",
				},
			),
			AvailableFunds: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "available_funds",
					Help:      "Funds available for future payments",
				},
			),
			AllocatedFunds: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "allocated_funds",
					Help:      "Funds owed to oracles and not yet withdrawn",
				},
			),
			OracleCount: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "oracle_count",
					Help:      "Number of enabled oracles",
				},
			),
			ValidatorFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "fluxagg",
					Name:      "validator_failures_total",
					Help:      "Answer validator notifications that failed",
				},
			),
		}
	})
	return fluxMetrics
}

// toFloat converts an amount for gauges; precision loss is acceptable there.
func toFloat(v math.Int) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}
