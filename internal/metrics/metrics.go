package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chargeslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BookingRequestsTotal counts booking attempts by outcome:
	// created, conflict, forbidden, past, error.
	BookingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_booking_requests_total",
			Help: "Total number of booking requests by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"by"},
	)

	ChargingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_charging_transitions_total",
			Help: "Total number of charging status changes",
		},
		[]string{"to"},
	)

	BanUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_ban_updates_total",
			Help: "Total number of bans set or lifted",
		},
		[]string{"action"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chargeslot_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargeslot_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"routing_key", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingRequest(outcome string) {
	BookingRequestsTotal.WithLabelValues(outcome).Inc()
}

func RecordBookingCancellation(by string) {
	BookingCancellationsTotal.WithLabelValues(by).Inc()
}

func RecordChargingTransition(to string) {
	ChargingTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordBanUpdate(action string) {
	BanUpdatesTotal.WithLabelValues(action).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordEvent(routingKey, status string) {
	EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
}
