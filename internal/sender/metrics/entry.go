// Gathers pipeline metrics and saves to central registry
package metrics

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"devsyslog/internal/metrics"
	"runtime/debug"
	"time"
)

func New(interval time.Duration, maximumMetricAge time.Duration, sources ...Source) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Interval:  interval,
		Retention: maximumMetricAge,
		sources:   sources,
	}
	return
}

// Adds a source read on every following interval
func (gatherer *Gatherer) AddSource(source Source) {
	gatherer.mutex.Lock()
	defer gatherer.mutex.Unlock()
	gatherer.sources = append(gatherer.sources, source)
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Tracking last interval run time
	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				lastRun = now
				gatherer.Collect(ctx, now)
			}

			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Reads every source into the time slice for now
func (gatherer *Gatherer) Collect(ctx context.Context, now time.Time) (timeSlice time.Time) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector: %v\n%s", fatalError, stack)
		}
	}()

	timeSlice = gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

	gatherer.mutex.Lock()
	sources := append([]Source(nil), gatherer.sources...)
	gatherer.mutex.Unlock()

	for _, source := range sources {
		gatherer.Registry.Add(timeSlice, source(gatherer.Interval))
	}

	gatherer.mutex.Lock()
	gatherer.latest = timeSlice
	gatherer.mutex.Unlock()
	return
}

// Metrics from the most recent collection, empty before the first one
func (gatherer *Gatherer) Latest() (collection []metrics.Metric) {
	gatherer.mutex.Lock()
	timeSlice := gatherer.latest
	gatherer.mutex.Unlock()

	if timeSlice.IsZero() {
		return
	}
	collection = gatherer.Registry.Search("", nil, timeSlice, timeSlice)
	return
}
