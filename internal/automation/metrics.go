package automation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_events_dispatched_total",
		Help: "Events processed by the dispatch engine, by event kind.",
	}, []string{"kind"})

	actionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_actions_executed_total",
		Help: "Rule actions executed, by action type and result.",
	}, []string{"type", "result"})

	cascadesTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "automation_cascades_truncated_total",
		Help: "Causal chains cut off by the cascade depth guard.",
	})
)
