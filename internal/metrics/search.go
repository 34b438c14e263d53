package metrics

import (
	"slices"
	"sort"
	"strings"
	"time"
)

func hasNamespacePrefix(namespace, prefix []string) bool {
	if len(prefix) > len(namespace) {
		return false
	}
	return slices.Equal(namespace[:len(prefix)], prefix)
}

// Returns metrics named name (empty for any) under namespacePrefix (empty for any),
// from slices inside [start, end]. A zero bound leaves that side open.
// Results are ordered oldest slice first, then by namespace and name.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	var window []time.Time
	for timeSlice := range registry.slices {
		if !start.IsZero() && timeSlice.Before(start) {
			continue
		}
		if !end.IsZero() && timeSlice.After(end) {
			continue
		}
		window = append(window, timeSlice)
	}
	sort.Slice(window, func(i, j int) bool { return window[i].Before(window[j]) })

	for _, timeSlice := range window {
		var matched []Metric
		for path, named := range registry.slices[timeSlice] {
			if !hasNamespacePrefix(strings.Split(path, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range named {
				if name != "" && metricName != name {
					continue
				}
				matched = append(matched, metric)
			}
		}

		sort.Slice(matched, func(i, j int) bool {
			left := strings.Join(matched[i].Namespace, "/")
			right := strings.Join(matched[j].Namespace, "/")
			if left != right {
				return left < right
			}
			return matched[i].Name < matched[j].Name
		})
		results = append(results, matched...)
	}
	return
}
