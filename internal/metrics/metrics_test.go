package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskObserver(t *testing.T) {
	m := NewUnregistered()

	m.TaskStarted("elapsed")
	m.TaskStarted("elapsed")
	m.TaskFinished("elapsed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveTasks.WithLabelValues("elapsed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksStarted.WithLabelValues("elapsed")))
}

func TestSummarize(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordsCreated.Inc()
	m.SessionTransitions.WithLabelValues("idle", "running").Inc()
	m.ActiveTasks.WithLabelValues("metronome").Set(0)

	summary, err := Summarize(reg)
	require.NoError(t, err)
	assert.Equal(t,
		"jogging_records_created_total{} 1\njogging_session_transitions_total{from=idle,to=running} 1",
		summary)
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
