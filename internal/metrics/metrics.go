// Package metrics holds the Prometheus collectors of the chat and
// recommendation services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes
const (
	OutcomeOK       = "ok"
	OutcomeCacheHit = "cache_hit"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConversationsStarted   prometheus.Counter
	ConversationsCompleted prometheus.Counter
	ConversationsAbandoned prometheus.Counter
	CommandsRejected       *prometheus.CounterVec
	ActiveSessions         prometheus.Gauge
	Recommendations        *prometheus.CounterVec
	RecommendDuration      prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentrobo_conversations_started_total",
			Help: "Total number of chat conversations that showed the greeting",
		}),
		ConversationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentrobo_conversations_completed_total",
			Help: "Total number of chat conversations that produced a payload",
		}),
		ConversationsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentrobo_conversations_abandoned_total",
			Help: "Total number of chat conversations closed before submitting",
		}),
		CommandsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentrobo_chat_commands_rejected_total",
				Help: "Total number of chat commands rejected by the conversation",
			},
			[]string{"command"},
		),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rentrobo_chat_sessions_active",
			Help: "Number of live chat sessions",
		}),
		Recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentrobo_recommendations_total",
				Help: "Total number of recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		RecommendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentrobo_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Started counts a conversation that showed its greeting.
func (m *Metrics) Started() {
	if m != nil {
		m.ConversationsStarted.Inc()
	}
}

// Completed counts a conversation that delivered its payload.
func (m *Metrics) Completed() {
	if m != nil {
		m.ConversationsCompleted.Inc()
	}
}

// Abandoned counts a conversation closed before completion.
func (m *Metrics) Abandoned() {
	if m != nil {
		m.ConversationsAbandoned.Inc()
	}
}

// Rejected counts a command the conversation refused.
func (m *Metrics) Rejected(command string) {
	if m != nil {
		m.CommandsRejected.WithLabelValues(command).Inc()
	}
}

// SetActiveSessions reports the number of live chat sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

// Recommended records one recommendation request.
func (m *Metrics) Recommended(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(outcome).Inc()
	m.RecommendDuration.Observe(seconds)
}
