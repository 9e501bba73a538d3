package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts turn and tool activity. A nil registerer produces
// unregistered collectors, which tests use to avoid global state.
type Metrics struct {
	TurnsTotal         *prometheus.CounterVec
	TurnFailuresTotal  prometheus.Counter
	ToolCallsTotal     *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxteller",
			Name:      "turns_total",
			Help:      "Completed conversation turns by flow",
		}, []string{"flow"}),
		TurnFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voxteller",
			Name:      "turn_failures_total",
			Help:      "Turns that failed with a turn-level error",
		}),
		ToolCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxteller",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome",
		}, []string{"tool", "outcome"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxteller",
			Name:      "verifications_total",
			Help:      "Identity verification attempts by result",
		}, []string{"result"}),
	}
}

func toolOutcome(result map[string]any, errMsg string) string {
	if errMsg != "" {
		return "failed"
	}
	if result != nil {
		if denial, ok := result["error"].(string); ok {
			return denial
		}
	}
	return "ok"
}
