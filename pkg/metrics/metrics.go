package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cmdbzh", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cmdbzh", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ReviewSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cmdbzh", Name: "review_submissions_total", Help: "Review submissions by kind (create, edit, edit_direct) and outcome."},
		[]string{"kind", "outcome"},
	)
	ReviewModerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cmdbzh", Name: "review_moderations_total", Help: "Moderation link hits by action and outcome."},
		[]string{"action", "outcome"},
	)
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cmdbzh", Name: "emails_sent_total", Help: "Outbound emails by template and outcome."},
		[]string{"template", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ReviewSubmissions)
	reg.MustRegister(ReviewModerations)
	reg.MustRegister(EmailsSent)
}
