package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	betTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_requests_total",
			Help: "Total bet placements by result",
		},
		[]string{"result"},
	)

	betDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bet_request_duration_ms",
			Help:    "Bet placement duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	settlementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_total",
			Help: "Total round settlements by result",
		},
		[]string{"result"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_ms",
			Help:    "Round settlement duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)
)

// RecordBet records business metrics for one placement attempt.
// result should be "success" or "fail".
func RecordBet(result string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	betTotal.WithLabelValues(res).Inc()
	betDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordSettlement records business metrics for one settlement attempt.
func RecordSettlement(result string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	settlementTotal.WithLabelValues(res).Inc()
	settlementDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
}
