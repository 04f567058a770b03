package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.SessionStarted()
	m.SessionStarted()
	m.ObserveTransition("welcome", "name", "auto")
	m.ObserveTransition("welcome", "name", "auto")
	m.ObserveCommit("ok", 20*time.Millisecond)
	m.SessionEnded("committed")
	m.GreetingLookupFailed()
	m.ObserveInteraction("component", "next", "ok", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("welcome", "name", "auto")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsEnded.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.greetingFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.interactions.WithLabelValues("component", "next", "ok")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.ObserveTransition("a", "b", "c")
		m.ObserveCommit("ok", time.Second)
		m.SessionEnded("abandoned")
		m.GreetingLookupFailed()
		m.ObserveInteraction("command", "onboard", "ok", time.Millisecond)
	})
}

func TestMustNew_PanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustNew(reg)

	assert.Panics(t, func() { MustNew(reg) })
}
