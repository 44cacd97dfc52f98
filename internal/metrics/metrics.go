package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spinbook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spinbook",
			Name:      "booking_created_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	notifierResult = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spinbook",
			Name:      "notifier_result_total",
			Help:      "Count of Telegram notification attempts by result.",
		},
		[]string{"result"},
	)

	providerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spinbook",
			Name:      "provider_errors_total",
			Help:      "Count of calendar provider errors by kind.",
		},
		[]string{"kind"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingCreated, notifierResult, providerErrors)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncBookingCreated(outcome string) {
	bookingCreated.WithLabelValues(outcome).Inc()
}

func IncNotifierResult(result string) {
	notifierResult.WithLabelValues(result).Inc()
}

func IncProviderError(kind string) {
	providerErrors.WithLabelValues(kind).Inc()
}
