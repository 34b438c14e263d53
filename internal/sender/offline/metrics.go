package offline

import (
	"devsyslog/internal/metrics"
	"time"
)

func (queue *Queue) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	appended := queue.Metrics.Appended.Swap(0)
	appendFails := queue.Metrics.AppendFails.Swap(0)
	replayed := queue.Metrics.Replayed.Swap(0)
	drainFails := queue.Metrics.DrainFails.Swap(0)
	truncations := queue.Metrics.Truncations.Swap(0)
	droppedBytes := queue.Metrics.DroppedBytes.Swap(0)
	size := uint64(queue.Size())

	recordTime := time.Now()

	entries := []struct {
		name        string
		description string
		unit        string
		raw         uint64
	}{
		{"appended_lines", "Lines written to the offline queue in the interval", "count", appended},
		{"append_failures", "Lines that could not be queued in the interval", "count", appendFails},
		{"replayed_lines", "Queued lines delivered by drains in the interval", "count", replayed},
		{"drain_failures", "Drains stopped by a send failure in the interval", "count", drainFails},
		{"truncations", "Over-cap backlogs discarded in the interval", "count", truncations},
		{"truncated_bytes", "Bytes discarded by truncation in the interval", "bytes", droppedBytes},
		{"queue_size", "Current offline queue file size", "bytes", size},
	}

	collection = make([]metrics.Metric, 0, len(entries))
	for _, entry := range entries {
		collection = append(collection, metrics.Metric{
			Name:        entry.name,
			Description: entry.description,
			Namespace:   queue.Namespace,
			Value: metrics.MetricValue{
				Raw:      entry.raw,
				Unit:     entry.unit,
				Interval: interval,
			},
			Type:      metrics.Gauge,
			Timestamp: recordTime,
		})
	}
	return
}
