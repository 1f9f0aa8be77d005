package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads captured",
		},
		[]string{"source"},
	)

	partnerSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_submissions_total",
			Help: "Partner submission attempts by result",
		},
		[]string{"result"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Notification channel operations by op and result",
		},
		[]string{"op", "result"},
	)

	conversionUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ads_conversion_uploads_total",
			Help: "Offline conversion uploads by result",
		},
		[]string{"result"},
	)

	postbacksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_postbacks_total",
			Help: "Partner postbacks received by event type",
		},
		[]string{"event_type"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordLeadCreated(source string) {
	leadsCreated.WithLabelValues(source).Inc()
}

// RecordPartnerSubmission result is one of accepted, rejected, duplicate.
func RecordPartnerSubmission(result string) {
	partnerSubmissions.WithLabelValues(result).Inc()
}

func RecordNotification(op string, ok bool) {
	notifications.WithLabelValues(op, resultLabel(ok)).Inc()
}

func RecordConversionUpload(ok bool) {
	conversionUploads.WithLabelValues(resultLabel(ok)).Inc()
}

func RecordPostback(eventType string) {
	postbacksReceived.WithLabelValues(eventType).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
