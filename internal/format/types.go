package format

import (
	"devsyslog/internal/syslog"
	"time"

	"github.com/fatih/color"
)

// One log call, owned by the caller for the duration of the call
type Event struct {
	Priority syslog.Priority
	Core     int
	Task     string
	Function string
	Mono     time.Duration // since pipeline start
	Wall     time.Time
	Text     string
}

// Turns a printf-style format and arguments into bounded text
type Renderer interface {
	Render(format string, args ...any) (text string)
}

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Builds both textual representations of an event
type Formatter struct {
	bound        int
	colorEnabled bool
	palette      [8]*color.Color
}
