package sender

import (
	"devsyslog/internal/metrics"
	"time"
)

func (pipeline *Pipeline) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	logged := pipeline.Metrics.Logged.Swap(0)
	suppressed := pipeline.Metrics.Suppressed.Swap(0)
	summaries := pipeline.Metrics.Summaries.Swap(0)
	consoleLines := pipeline.Metrics.ConsoleLines.Swap(0)

	// Read only
	maxConsole := pipeline.Metrics.MaxConsoleLen.Load()
	pending := pipeline.dedup.Pending()

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "logged_events",
			Description: "Events that passed the severity gate in the interval",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: logged, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "suppressed_repeats",
			Description: "Identical events suppressed in the interval",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: suppressed, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "repeat_summaries",
			Description: "Repeat summaries emitted in the interval",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: summaries, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "console_lines",
			Description: "Formatted lines written to the console in the interval",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: consoleLines, Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "pending_repeats",
			Description: "Copies of the held message currently suppressed",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: uint64(pending), Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "max_console_write",
			Description: "Largest single console write since start",
			Namespace:   pipeline.Namespace,
			Value:       metrics.MetricValue{Raw: maxConsole, Unit: "bytes", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
	}
	return
}

// Every metric source owned by the pipeline, for the gatherer
func (pipeline *Pipeline) MetricSources() (sources []func(time.Duration) []metrics.Metric) {
	sources = []func(time.Duration) []metrics.Metric{
		pipeline.CollectMetrics,
		pipeline.output.CollectMetrics,
		pipeline.output.Connection().CollectMetrics,
		pipeline.output.Queue().CollectMetrics,
	}
	return
}
