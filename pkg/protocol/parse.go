package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrMalformed = errors.New("malformed syslog line")

// Parses a wire line produced by Encode. Trailing terminators are ignored.
func Parse(line []byte) (msg Message, err error) {
	line = StripTerminators(line)

	fields := bytes.SplitN(line, []byte{fieldSeparator}, 8)
	if len(fields) < 7 {
		err = fmt.Errorf("%w: expected at least 7 fields, got %d", ErrMalformed, len(fields))
		return
	}

	pri, err := parsePriVersion(fields[0])
	if err != nil {
		return
	}
	msg.Priority = pri

	if string(fields[1]) != emptyFieldChar {
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, string(fields[1]))
		if err != nil {
			err = fmt.Errorf("%w: invalid timestamp: %v", ErrMalformed, err)
			return
		}
	}

	msg.Hostname = nilToEmpty(fields[2])
	msg.AppName = nilToEmpty(fields[3])
	msg.ProcID = nilToEmpty(fields[4])
	msg.MsgID = nilToEmpty(fields[5])

	if string(fields[6]) != emptyFieldChar {
		err = fmt.Errorf("%w: structured data is not supported", ErrMalformed)
		return
	}

	if len(fields) == 8 {
		msg.Text = string(fields[7])
	}
	return
}

// Reads "<PRI>VERSION"
func parsePriVersion(field []byte) (pri uint8, err error) {
	end := bytes.IndexByte(field, '>')
	if len(field) < 4 || field[0] != '<' || end < 2 || end > 4 {
		err = fmt.Errorf("%w: invalid PRI field %q", ErrMalformed, field)
		return
	}

	value, convErr := strconv.ParseUint(string(field[1:end]), 10, 8)
	if convErr != nil || value > 191 {
		err = fmt.Errorf("%w: PRI out of range %q", ErrMalformed, field[1:end])
		return
	}

	if string(field[end+1:]) != string(Version) {
		err = fmt.Errorf("%w: unsupported version %q", ErrMalformed, field[end+1:])
		return
	}

	pri = uint8(value)
	return
}

func nilToEmpty(field []byte) (value string) {
	if string(field) == emptyFieldChar {
		return
	}
	value = string(field)
	return
}

// Rewrites the HOSTNAME field when it equals placeholder. Other fields are left untouched,
// so a placeholder that appears inside message text is never altered.
func ReplaceHost(line []byte, placeholder, host string) (patched []byte, replaced bool) {
	patched = line
	if placeholder == "" || host == "" {
		return
	}

	// HOSTNAME is the third space separated field
	start := 0
	for i := 0; i < 2; i++ {
		idx := bytes.IndexByte(line[start:], fieldSeparator)
		if idx == -1 {
			return
		}
		start += idx + 1
	}
	end := bytes.IndexByte(line[start:], fieldSeparator)
	if end == -1 {
		return
	}
	end += start

	if string(line[start:end]) != placeholder {
		return
	}

	cleanHost := cleanField(host, maxHostnameLen)
	patched = make([]byte, 0, len(line)-len(placeholder)+len(cleanHost))
	patched = append(patched, line[:start]...)
	patched = append(patched, cleanHost...)
	patched = append(patched, line[end:]...)
	replaced = true
	return
}
