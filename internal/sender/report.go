package sender

import (
	"devsyslog/internal/metrics"
	"fmt"
	"io"
	"strings"

	"github.com/pbnjay/memory"
)

// Writes connection statistics and pipeline state, one item per line
func (pipeline *Pipeline) Report(w io.Writer) (err error) {
	conn := pipeline.output.Connection()
	queue := pipeline.output.Queue()

	remote := pipeline.remoteAddress()
	if remote == "" {
		remote = "-"
	}
	hostID := pipeline.HostID()
	if hostID == "" {
		hostID = "-"
	}
	localPort, owned := conn.LocalBinding()

	lines := []string{
		fmt.Sprintf("maxTX=%d CurRpt=%d", conn.MaxBytesSent(), pipeline.dedup.Pending()),
		fmt.Sprintf("state=%s remote=%s host=%s", conn.State(), remote, hostID),
		fmt.Sprintf("localPort=%d owned=%t", localPort, owned),
		fmt.Sprintf("sent=%d queued=%d dropped=%d",
			pipeline.Metrics.TotalSent.Load(),
			pipeline.Metrics.TotalQueued.Load(),
			pipeline.Metrics.TotalDropped.Load()),
		fmt.Sprintf("console level=%d host level=%d ceiling=%d maxConsole=%d buffer=%s",
			pipeline.ConsoleLevel(), pipeline.HostLevel(), pipeline.gate.Ceiling(),
			pipeline.Metrics.MaxConsoleLen.Load(), pipeline.dedup.Mode()),
	}
	if queue.Enabled() {
		lines = append(lines, fmt.Sprintf("queue=%s size=%d cap=%d drainPending=%t",
			queue.Path(), queue.Size(), queue.MaxBytes(), queue.DrainPending()))
	} else {
		lines = append(lines, "queue=disabled")
	}
	lines = append(lines, fmt.Sprintf("freeMem=%d totalMem=%d", memory.FreeMemory(), memory.TotalMemory()))

	_, err = io.WriteString(w, strings.Join(lines, "\n")+"\n")
	if err != nil {
		err = fmt.Errorf("failed to write report: %w", err)
		return
	}
	return
}

// Appends the metrics of one collection slice below a report
func WriteMetricSlice(w io.Writer, collection []metrics.Metric) (err error) {
	for _, metric := range collection {
		converted := metric.Convert()
		_, err = fmt.Fprintf(w, "%s/%s=%s %s\n", converted.Namespace, converted.Name, converted.Value.Raw, converted.Value.Unit)
		if err != nil {
			err = fmt.Errorf("failed to write metric: %w", err)
			return
		}
	}
	return
}
