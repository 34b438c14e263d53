// Time-bucketed in-memory store for pipeline counters and gauges
package metrics

import (
	"sync"
	"time"
)

// Metrics keyed by collection slice, then namespace path, then metric name
type Registry struct {
	mutex  sync.RWMutex
	slices map[time.Time]map[string]map[string]Metric
}

type MetricType string

const (
	Counter MetricType = "counter" // monotonic within a process lifetime
	Gauge   MetricType = "gauge"
	Summary MetricType = "summary"
)

type Metric struct {
	Name        string // e.g. sent_lines
	Description string
	Namespace   []string // e.g. Sender/Pipeline/Output
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time
}

type MetricValue struct {
	Raw      any // uint64, int64 or float64
	Unit     string
	Interval time.Duration // window the value covers
}

// Export form with every value rendered as text
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
