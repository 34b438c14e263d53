package sender

import (
	"bufio"
	"context"
	"devsyslog/internal/atomics"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"devsyslog/internal/syslog"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
)

// One input line split into its parts
type IngestLine struct {
	Priority syslog.Priority
	Function string
	Text     string
}

// Parses "[<PRI>][function: ]text". A missing or invalid PRI keeps defaultPriority.
func ParseIngestLine(raw string, defaultPriority syslog.Priority) (line IngestLine) {
	line.Priority = defaultPriority
	line.Function = global.DefaultIngestFunction

	rest := strings.TrimRight(raw, "\r\n")
	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end > 1 && end <= 4 {
			value, err := strconv.Atoi(rest[1:end])
			if err == nil && value >= 0 && value <= int(syslog.MaxPriority) {
				line.Priority = syslog.Priority(value)
				rest = rest[end+1:]
			}
		}
	}

	// Function prefix is a single token ending in ':'
	colon := strings.Index(rest, ": ")
	if colon > 0 && !strings.ContainsAny(rest[:colon], " \t") {
		line.Function = rest[:colon]
		rest = rest[colon+2:]
	}

	line.Text = strings.TrimSpace(rest)
	return
}

// Logs every line read from input until EOF or cancellation. Empty lines are skipped.
// inflight, when set, counts lines read but not yet logged.
func (pipeline *Pipeline) Ingest(ctx context.Context, input io.Reader, defaultPriority syslog.Priority, inflight *atomic.Uint64) (lines int, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSIngest)

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, pipeline.formatter.Bound()), global.MaxIngestLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		if inflight != nil {
			inflight.Add(1)
		}
		line := ParseIngestLine(scanner.Text(), defaultPriority)
		if line.Text != "" {
			pipeline.Log(line.Priority, line.Function, "%s", line.Text)
			lines++
		}
		if inflight != nil {
			atomics.Subtract(inflight, 1)
		}
	}

	err = scanner.Err()
	if err != nil {
		err = fmt.Errorf("failed reading input: %w", err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"input closed after %d lines\n", lines)
	return
}
