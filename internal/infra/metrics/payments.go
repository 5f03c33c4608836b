package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		settlementsTotal,
		settledRevenueTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment records by status (pending/completed/failed/expired).",
		},
		[]string{"status"},
	)

	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement notifications by result (completed/failed/duplicate/not_found/error).",
		},
		[]string{"result"},
	)

	settledRevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settled_revenue_total",
			Help: "Total monetary value of completed payments, in SAR.",
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func IncSettlement(result string) {
	settlementsTotal.WithLabelValues(norm(result)).Inc()
}

func AddSettledRevenue(amount float64) {
	settledRevenueTotal.Add(amount)
}
