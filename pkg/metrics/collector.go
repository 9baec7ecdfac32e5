// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chanport/channels-bot/internal/state"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled, labeled by action and status",
		},
		[]string{"action", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of bot update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_state_transitions_total",
			Help: "Total number of admin conversation state transitions",
		},
		[]string{"from", "to"},
	)
	paymentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "Total number of invoices issued",
		},
	)
	paymentsCreatedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_created_amount_usdt_total",
			Help: "Sum of issued invoice amounts in USDT",
		},
	)
	paymentsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_resolved_total",
			Help: "Total number of payments that reached a terminal status",
		},
		[]string{"status"},
	)
	reconcilePassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Total number of reconciliation passes",
		},
	)
	reconcilePendingPayments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_pending_payments",
			Help: "Number of pending payments seen by the latest reconciliation pass",
		},
	)
	reconcilePassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	broadcastMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Total number of broadcast messages, labeled by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(action, status).Inc()
	updateDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordStateTransition counts one admin FSM transition.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordPaymentCreated counts one issued invoice and its amount.
func RecordPaymentCreated(amount int) {
	paymentsCreatedTotal.Inc()
	paymentsCreatedAmount.Add(float64(amount))
}

// RecordPaymentResolved counts one payment reaching a terminal status.
func RecordPaymentResolved(status string) {
	paymentsResolvedTotal.WithLabelValues(status).Inc()
}

// RecordReconcilePass records the size and duration of one pass.
func RecordReconcilePass(pending int, duration time.Duration) {
	reconcilePassesTotal.Inc()
	reconcilePendingPayments.Set(float64(pending))
	reconcilePassDuration.Observe(duration.Seconds())
}

// RecordBroadcastMessage counts one broadcast delivery attempt.
func RecordBroadcastMessage(status string) {
	broadcastMessagesTotal.WithLabelValues(status).Inc()
}
