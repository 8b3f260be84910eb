package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_updates_total",
			Help: "Inbound updates by kind",
		},
		[]string{"kind"},
	)
	HandlerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_handler_errors_total",
			Help: "Handler failures surfaced to users as a generic error",
		},
		[]string{"handler"},
	)
	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docbot_handler_duration_seconds",
			Help:    "Time spent handling one update",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docbot_rate_limited_total",
			Help: "Updates dropped by the per-user rate limiter",
		},
	)
	Coins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_coins_total",
			Help: "Coins moved through the ledger",
		},
		[]string{"direction", "type"},
	)
	PaymentCodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_payment_codes_total",
			Help: "Payment code lifecycle events",
		},
		[]string{"result"},
	)
	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_orders_total",
			Help: "Placed content orders",
		},
		[]string{"content_type"},
	)
	SubscriptionBonuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docbot_subscription_bonuses_total",
			Help: "Subscription bonuses granted",
		},
	)
	ReferralRewards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docbot_referral_rewards_total",
			Help: "Referral rewards granted",
		},
	)
	ScheduledNotices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docbot_scheduled_notices",
			Help: "Completion notices waiting to be sent",
		},
	)

	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		UpdatesTotal,
		HandlerErrors,
		HandlerDuration,
		RateLimited,
		Coins,
		PaymentCodes,
		Orders,
		SubscriptionBonuses,
		ReferralRewards,
		ScheduledNotices,
		RLRequests,
		RLBlocked,
	)
}
