package connection

import (
	"devsyslog/internal/metrics"
	"time"
)

func (manager *Manager) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear interval counters
	connects := manager.Metrics.Connects.Swap(0)
	connectFails := manager.Metrics.ConnectFails.Swap(0)
	evictions := manager.Metrics.Evictions.Swap(0)
	sendFails := manager.Metrics.SendFails.Swap(0)
	datagrams := manager.Metrics.TotalDatagrams.Swap(0)
	sumBytes := manager.Metrics.SumBytes.Swap(0)
	maxBytes := manager.Metrics.MaxBytesSent.Load()

	recordTime := time.Now()

	var avgBytes uint64
	if datagrams > 0 {
		avgBytes = sumBytes / datagrams
	}

	gauge := func(name, description, unit string, raw uint64) metrics.Metric {
		return metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   manager.Namespace,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
			Type:      metrics.Gauge,
			Timestamp: recordTime,
		}
	}

	collection = []metrics.Metric{
		gauge("connects", "Successful connection attempts in the interval", "count", connects),
		gauge("connect_failures", "Failed connection attempts in the interval", "count", connectFails),
		gauge("evictions", "Stale endpoints closed in the interval", "count", evictions),
		gauge("send_failures", "Datagram writes that tore the connection down", "count", sendFails),
		gauge("total_sent_datagrams", "Datagrams sent in the interval", "count", datagrams),
		gauge("sum_datagram_size", "Total size of all datagrams sent in the interval", "bytes", sumBytes),
		{
			Name:        "maximum_datagram_size",
			Description: "Largest datagram sent since start",
			Namespace:   manager.Namespace,
			Value: metrics.MetricValue{
				Raw:      maxBytes,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "average_datagram_size",
			Description: "Average datagram size in the interval",
			Namespace:   manager.Namespace,
			Value: metrics.MetricValue{
				Raw:      avgBytes,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Summary,
			Timestamp: recordTime,
		},
	}
	return
}
