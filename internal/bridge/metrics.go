package bridge

import "github.com/prometheus/client_golang/prometheus"

var (
	pollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vesync_bridge_polls_total",
			Help: "Device status polls attempted",
		},
	)
	pollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vesync_bridge_poll_errors_total",
			Help: "Device status polls that returned no snapshot",
		},
	)
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesync_bridge_commands_total",
			Help: "Commands dispatched to devices",
		},
		[]string{"kind"},
	)
	commandRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vesync_bridge_command_rejections_total",
			Help: "Commands rejected by preset validation",
		},
	)
	entitiesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vesync_bridge_entities",
			Help: "Entities currently bridged",
		},
	)
)

// MetricsCollectors exposes the bridge collectors for registration.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		pollsTotal,
		pollErrorsTotal,
		commandsTotal,
		commandRejectionsTotal,
		entitiesGauge,
	}
}
