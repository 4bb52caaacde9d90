package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parking"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	FeesCalculated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fees_calculated_total",
		Help:      "Parking fee calculations by vehicle type and outcome.",
	}, []string{"vehicle_type", "outcome"})

	CreditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_operations_total",
		Help:      "Credit ledger operations by type and outcome.",
	}, []string{"type", "outcome"})

	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_deliveries_total",
		Help:      "Notification deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})

	SweepAccounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_accounts_total",
		Help:      "Accounts visited by background sweeps.",
	}, []string{"sweep", "outcome"})
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
