package logctx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stringify full event. Only parts that are present are printed.
func (event Event) Format() (text string) {
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+padTimestamp(event.Timestamp)+"]")
	}
	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}
	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	// No newline, message creator determines newlines
	text = strings.Join(parts, " ")
	return
}

// Fixed width RFC 3339 timestamp (nanoseconds always nine digits)
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format("2006-01-02T15:04:05.000000000Z07:00")
	return
}

// Buffered events, oldest first and each ending in a newline. Zero timestamps sort last.
func (logger *Logger) FormattedLines() (formatted []string) {
	logger.mutex.Lock()
	events := make([]Event, len(logger.queue))
	copy(events, logger.queue)
	logger.mutex.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		ti := events[i].Timestamp
		tj := events[j].Timestamp
		if ti.IsZero() {
			return false
		}
		if tj.IsZero() {
			return true
		}
		return ti.Before(tj)
	})

	formatted = make([]string, 0, len(events))
	for _, event := range events {
		line := event.Format()
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		formatted = append(formatted, line)
	}
	return
}

func (tracker *repeatTracker) summary(event Event) (line string) {
	line = fmt.Sprintf("[%s] [%s] [Info] Suppressed %d repeated messages: %s",
		padTimestamp(event.Timestamp), strings.Join(event.Tags, "/"), tracker.repeatCount, tracker.lastMsg)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return
}
