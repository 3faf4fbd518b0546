package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchaseDuration tracks the latency of purchase requests
	PurchaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rifa_purchase_duration_seconds",
			Help: "Duration of purchase requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"kind", "status"}, // game kind; success, partial or failure
	)

	// UnitsAllocated counts slots claimed and cards issued
	UnitsAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rifa_units_allocated_total",
			Help: "Number of slots claimed and scratch cards issued",
		},
		[]string{"kind"},
	)

	// SlotContention counts claims rejected by the uniqueness constraint
	SlotContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rifa_slot_taken_total",
			Help: "Number of slot claims lost to an earlier claim",
		},
	)

	// Reveals counts reveal outcomes
	Reveals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rifa_reveals_total",
			Help: "Number of card reveal requests by result",
		},
		[]string{"status"}, // success, repeat or failure
	)
)

// RecordPurchaseDuration records the duration of one purchase request
func RecordPurchaseDuration(kind, status string, duration float64) {
	PurchaseDuration.WithLabelValues(kind, status).Observe(duration)
}
