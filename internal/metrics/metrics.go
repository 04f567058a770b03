package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for onboarding activity. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	transitions      *prometheus.CounterVec
	sessionsStarted  prometheus.Counter
	sessionsEnded    *prometheus.CounterVec
	commits          *prometheus.CounterVec
	commitDuration   prometheus.Histogram
	sessionsActive   prometheus.Gauge
	greetingFailures prometheus.Counter

	interactions        *prometheus.CounterVec
	interactionDuration *prometheus.HistogramVec
}

// MustNew registers the collectors with reg and panics on conflicts
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "step_transitions_total",
			Help:      "Wizard step transitions.",
		}, []string{"from", "to", "trigger"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "sessions_started_total",
			Help:      "Onboarding sessions started.",
		}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "sessions_ended_total",
			Help:      "Onboarding sessions ended, by reason.",
		}, []string{"reason"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "commits_total",
			Help:      "Profile commits by result code.",
		}, []string{"result"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "onboarding",
			Name:      "commit_duration_seconds",
			Help:      "Time spent merging the draft into the profile store.",
			Buckets:   prometheus.DefBuckets,
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "onboarding",
			Name:      "sessions_active",
			Help:      "Onboarding sessions currently held in memory.",
		}),
		greetingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "onboarding",
			Name:      "greeting_lookup_failures_total",
			Help:      "Welcome-step name lookups that fell back to an empty greeting.",
		}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "discord",
			Name:      "interactions_total",
			Help:      "Discord interactions handled, by kind, action and result.",
		}, []string{"kind", "action", "result"}),
		interactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onboarding",
			Subsystem: "discord",
			Name:      "interaction_duration_seconds",
			Help:      "Time spent in Discord interaction handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.transitions,
		m.sessionsStarted,
		m.sessionsEnded,
		m.commits,
		m.commitDuration,
		m.sessionsActive,
		m.greetingFailures,
		m.interactions,
		m.interactionDuration,
	)
	return m
}

// ObserveTransition counts one step transition
func (m *Metrics) ObserveTransition(from, to, trigger string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, trigger).Inc()
}

// SessionStarted counts a new session
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
	m.sessionsActive.Inc()
}

// SessionEnded counts a session leaving memory; reason is committed,
// abandoned or unauthenticated
func (m *Metrics) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(reason).Inc()
	m.sessionsActive.Dec()
}

// ObserveCommit records a commit's outcome and duration
func (m *Metrics) ObserveCommit(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
	m.commitDuration.Observe(d.Seconds())
}

// GreetingLookupFailed counts a failed welcome lookup
func (m *Metrics) GreetingLookupFailed() {
	if m == nil {
		return
	}
	m.greetingFailures.Inc()
}

// ObserveInteraction records one Discord interaction; result is "ok" or an
// error code
func (m *Metrics) ObserveInteraction(kind, action, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(kind, action, result).Inc()
	m.interactionDuration.WithLabelValues(kind).Observe(d.Seconds())
}
