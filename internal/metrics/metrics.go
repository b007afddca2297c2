// Package metrics holds the Prometheus instrumentation for the jogging timer.
// Collectors are registered on an injected Registerer so tests get a fresh set.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the app records
type Metrics struct {
	// ActiveTasks tracks running loop tasks by kind. Each kind must stay at 0 or 1.
	ActiveTasks *prometheus.GaugeVec

	// TasksStarted counts tasks started by kind.
	TasksStarted *prometheus.CounterVec

	// SessionTransitions counts status changes.
	SessionTransitions *prometheus.CounterVec

	// RecordsCreated counts jogging records appended to the log.
	RecordsCreated prometheus.Counter

	// ResourceMissing counts audio resources that could not be resolved or opened.
	ResourceMissing *prometheus.CounterVec

	// Interruptions counts audio interruption signals by kind.
	Interruptions *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jogging_active_tasks",
			Help: "Number of active control loop tasks, by kind.",
		}, []string{"kind"}),
		TasksStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jogging_tasks_started_total",
			Help: "Total number of control loop tasks started, by kind.",
		}, []string{"kind"}),
		SessionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jogging_session_transitions_total",
			Help: "Total number of session status transitions, by source and target status.",
		}, []string{"from", "to"}),
		RecordsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "jogging_records_created_total",
			Help: "Total number of jogging records created.",
		}),
		ResourceMissing: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jogging_audio_resource_missing_total",
			Help: "Total number of audio resources that could not be loaded, by resource name.",
		}, []string{"resource"}),
		Interruptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jogging_interruptions_total",
			Help: "Total number of audio interruption signals, by kind.",
		}, []string{"kind"}),
	}
}

// NewUnregistered creates collectors that are not exposed anywhere
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// TaskStarted implements clock.TaskObserver
func (m *Metrics) TaskStarted(kind string) {
	m.ActiveTasks.WithLabelValues(kind).Inc()
	m.TasksStarted.WithLabelValues(kind).Inc()
}

// TaskFinished implements clock.TaskObserver
func (m *Metrics) TaskFinished(kind string) {
	m.ActiveTasks.WithLabelValues(kind).Dec()
}

// Summarize renders every non-zero sample gathered from g on one line each
func Summarize(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}
