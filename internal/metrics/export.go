package metrics

import (
	"fmt"
	"strings"
	"time"
)

func (metric Metric) Convert() (exported JMetric) {
	exported = JMetric{
		Name:        metric.Name,
		Description: metric.Description,
		Namespace:   strings.Join(metric.Namespace, "/"),
		Type:        string(metric.Type),
		Timestamp:   metric.Timestamp.Format(time.RFC3339Nano),
		Value: JMetricValue{
			Unit:     metric.Value.Unit,
			Interval: metric.Value.Interval.String(),
		},
	}
	if metric.Value.Raw != nil {
		exported.Value.Raw = fmt.Sprint(metric.Value.Raw)
	}
	return
}
