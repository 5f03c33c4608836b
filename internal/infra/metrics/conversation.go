package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		conversationMessages,
		linkVisitsTotal,
	)
}

var (
	conversationMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_messages_total",
			Help: "Inbound chat messages handled, labeled by the step they arrived in.",
		},
		[]string{"step"},
	)

	linkVisitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_visits_total",
			Help: "Public payment-link visits by disposition (redirect/completed/expired/failed/not_found/unavailable).",
		},
		[]string{"disposition"},
	)
)

func IncConversationMessage(step string) {
	conversationMessages.WithLabelValues(norm(step)).Inc()
}

func IncLinkVisit(disposition string) {
	linkVisitsTotal.WithLabelValues(norm(disposition)).Inc()
}
