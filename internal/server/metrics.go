package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spigell/talent-screener/internal/intake"
)

// unknownStage labels turns sent with a stage the machine does not know.
const unknownStage = "unknown"

// Metrics counts conversation activity served over HTTP.
type Metrics struct {
	started     prometheus.Counter
	turns       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	completed   prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talent_screener_conversations_started_total",
			Help: "Conversations started through the API.",
		}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "talent_screener_turns_total",
			Help: "Processed turns by the stage they were received in.",
		}, []string{"stage"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "talent_screener_stage_transitions_total",
			Help: "Stage changes caused by a turn.",
		}, []string{"from", "to"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talent_screener_conversations_completed_total",
			Help: "Conversations that reached the completed stage.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "talent_screener_turn_duration_seconds",
			Help:    "Time spent processing a turn, including model calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.started, m.turns, m.transitions, m.completed, m.duration)
	return m
}

func stageLabel(stage intake.Stage) string {
	if !stage.Valid() {
		return unknownStage
	}
	return stage.String()
}

func (m *Metrics) observeTurn(fromStage, toStage intake.Stage, seconds float64) {
	from, to := stageLabel(fromStage), stageLabel(toStage)
	m.turns.WithLabelValues(from).Inc()
	m.duration.Observe(seconds)
	if from == to {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
	if toStage == intake.StageCompleted {
		m.completed.Inc()
	}
}
