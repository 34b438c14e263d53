package output

import (
	"devsyslog/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	sent := instance.Metrics.Sent.Swap(0)
	queued := instance.Metrics.Queued.Swap(0)
	dropped := instance.Metrics.Dropped.Swap(0)
	lockTimeouts := instance.Metrics.LockTimeouts.Swap(0)
	drains := instance.Metrics.Drains.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "sent_lines",
			Description: "Lines delivered directly to the collector in the interval",
			Namespace:   instance.Namespace,
			Value:       metrics.MetricValue{Raw: sent, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "queued_lines",
			Description: "Lines diverted to the offline queue in the interval",
			Namespace:   instance.Namespace,
			Value:       metrics.MetricValue{Raw: queued, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "dropped_lines",
			Description: "Lines neither sent nor queued in the interval",
			Namespace:   instance.Namespace,
			Value:       metrics.MetricValue{Raw: dropped, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "lock_timeouts",
			Description: "Transport lock waits that exceeded the bound in the interval",
			Namespace:   instance.Namespace,
			Value:       metrics.MetricValue{Raw: lockTimeouts, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "drains",
			Description: "Offline queue drains started in the interval",
			Namespace:   instance.Namespace,
			Value:       metrics.MetricValue{Raw: drains, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
	}
	return
}
