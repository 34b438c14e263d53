package protocol

import (
	"strconv"
	"time"
)

// Formats a wall-clock time for the TIMESTAMP field. Zero time encodes as NILVALUE.
func FormatTimestamp(ts time.Time) (formatted string) {
	if ts.IsZero() {
		formatted = emptyFieldChar
		return
	}
	formatted = ts.Format(TimestampLayout)
	return
}

// Builds the header up to and including the structured-data field (no trailing space)
func appendHeader(dst []byte, msg Message) (header []byte) {
	header = append(dst, '<')
	header = strconv.AppendUint(header, uint64(msg.Priority), 10)
	header = append(header, '>', Version, fieldSeparator)
	header = append(header, FormatTimestamp(msg.Timestamp)...)
	header = append(header, fieldSeparator)
	header = append(header, cleanField(msg.Hostname, maxHostnameLen)...)
	header = append(header, fieldSeparator)
	header = append(header, cleanField(msg.AppName, maxAppNameLen)...)
	header = append(header, fieldSeparator)
	header = append(header, cleanField(msg.ProcID, maxProcIDLen)...)
	header = append(header, fieldSeparator)
	header = append(header, cleanField(msg.MsgID, maxMsgIDLen)...)
	header = append(header, fieldSeparator)
	header = append(header, emptyFieldChar...) // structured data
	return
}

// Encodes a message into one wire line no longer than bound bytes (bound <= 0 means unbounded).
// Message text is truncated to fit; the line carries no trailing terminator.
func Encode(msg Message, bound int) (line []byte) {
	capacity := bound
	if capacity <= 0 {
		capacity = 64 + len(msg.Text)
	}
	line = make([]byte, 0, capacity)
	line = appendHeader(line, msg)

	text := cleanBytes([]byte(msg.Text))
	text = StripTerminators(text)
	if len(text) > 0 {
		line = append(line, fieldSeparator)
		if bound > 0 {
			text = truncateRunes(text, bound-len(line))
		}
		line = append(line, text...)
	}

	if bound > 0 && len(line) > bound {
		// Oversized header with a tiny bound: hard cut
		line = truncateRunes(line, bound)
	}
	line = StripTerminators(line)
	return
}
