package metrics

import (
	"strings"
	"time"
)

func New() (registry *Registry) {
	registry = &Registry{
		slices: make(map[time.Time]map[string]map[string]Metric),
	}
	return
}

// Opens (or reuses) the slice that now falls into, aligned down to interval
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (timeSlice time.Time) {
	timeSlice = now
	if interval > 0 {
		timeSlice = now.Truncate(interval)
	}

	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if _, ok := registry.slices[timeSlice]; !ok {
		registry.slices[timeSlice] = make(map[string]map[string]Metric)
	}
	return
}

// Stores a batch into an open slice. Batches for unknown slices are discarded.
// A metric with the same namespace and name replaces the earlier value.
func (registry *Registry) Add(timeSlice time.Time, batch []Metric) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	namespaces, ok := registry.slices[timeSlice]
	if !ok {
		return
	}

	for _, metric := range batch {
		path := strings.Join(metric.Namespace, "/")
		named := namespaces[path]
		if named == nil {
			named = make(map[string]Metric)
			namespaces[path] = named
		}
		named[metric.Name] = metric
	}
}

// Drops every slice older than maxAge relative to now
func (registry *Registry) Prune(now time.Time, maxAge time.Duration) (removed int) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	for timeSlice := range registry.slices {
		if now.Sub(timeSlice) > maxAge {
			delete(registry.slices, timeSlice)
			removed++
		}
	}
	return
}

// Number of stored slices
func (registry *Registry) Len() (count int) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	count = len(registry.slices)
	return
}
