package format

import (
	"devsyslog/internal/global"
	"devsyslog/internal/syslog"
	"devsyslog/pkg/protocol"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Creates a formatter bounding wire lines to bound bytes
func New(bound int, colorEnabled bool) (formatter *Formatter) {
	formatter = &Formatter{
		bound:        bound,
		colorEnabled: colorEnabled,
		palette: [8]*color.Color{
			syslog.SevEmergency: color.New(color.FgRed, color.Bold),
			syslog.SevAlert:     color.New(color.FgRed),
			syslog.SevCritical:  color.New(color.BgBlue, color.FgWhite),
			syslog.SevError:     color.New(color.FgMagenta),
			syslog.SevWarning:   color.New(color.FgYellow),
			syslog.SevNotice:    color.New(color.FgCyan),
			syslog.SevInfo:      color.New(color.FgGreen),
			syslog.SevDebug:     color.New(color.FgWhite),
		},
	}
	if colorEnabled {
		// Sinks may not be the process stdout, so ignore the global detection
		for _, entry := range formatter.palette {
			entry.EnableColor()
		}
	}
	return
}

// Resolves a colour mode against the sink the console lines are written to
func ColorEnabled(mode ColorMode, out io.Writer) (enabled bool) {
	switch mode {
	case ColorAlways:
		enabled = true
	case ColorNever:
		enabled = false
	default:
		file, ok := out.(*os.File)
		if !ok {
			return
		}
		enabled = term.IsTerminal(int(file.Fd()))
	}
	return
}

func ParseColorMode(text string) (mode ColorMode, err error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(text))) {
	case "", ColorAuto:
		mode = ColorAuto
	case ColorAlways:
		mode = ColorAlways
	case ColorNever:
		mode = ColorNever
	default:
		err = fmt.Errorf("unknown colour mode %q (expected auto, always or never)", text)
	}
	return
}

func (formatter *Formatter) Bound() int {
	return formatter.bound
}

// Human readable line without a trailing newline:
// <monotonic> #<core> <task> <function> <text>, coloured by severity
func (formatter *Formatter) Console(event Event) (line string) {
	var builder strings.Builder
	builder.Grow(32 + len(event.Task) + len(event.Function) + len(event.Text))

	builder.WriteString(FormatMono(event.Mono))
	builder.WriteString(" #")
	builder.WriteString(strconv.Itoa(event.Core))
	builder.WriteByte(' ')
	builder.WriteString(event.Task)
	builder.WriteByte(' ')
	builder.WriteString(event.Function)
	builder.WriteByte(' ')
	builder.WriteString(strings.TrimRight(event.Text, "\r\n"))

	line = builder.String()
	if formatter.colorEnabled {
		line = formatter.palette[event.Priority.Severity()].Sprint(line)
	}
	return
}

// RFC 5424 line for the collector, bounded to the formatter bound.
// An empty host is sent as the placeholder so it can be patched later.
func (formatter *Formatter) Wire(event Event, host string) (line []byte) {
	if host == "" {
		host = global.HostPlaceholder
	}

	msg := protocol.Message{
		Priority:  uint8(event.Priority),
		Timestamp: event.Wall,
		Hostname:  host,
		AppName:   event.Task + "/" + strconv.Itoa(event.Core),
		ProcID:    event.Function,
		Text:      event.Text,
	}
	line = protocol.Encode(msg, formatter.bound)
	return
}

// HH:MM:SS.uuuuuu (hours keep counting past 24)
func FormatMono(elapsed time.Duration) (text string) {
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed / time.Hour
	minutes := (elapsed % time.Hour) / time.Minute
	seconds := (elapsed % time.Minute) / time.Second
	micros := (elapsed % time.Second) / time.Microsecond
	text = fmt.Sprintf("%02d:%02d:%02d.%06d", hours, minutes, seconds, micros)
	return
}
