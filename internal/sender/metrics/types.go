package metrics

import (
	"devsyslog/internal/metrics"
	"sync"
	"time"
)

// Reads and resets one component's counters
type Source func(interval time.Duration) (collection []metrics.Metric)

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data

	mutex   sync.Mutex
	sources []Source
	latest  time.Time // last filled time slice
}
