// Cheap priority threshold checks performed before any formatting or locking
package gate

import (
	"devsyslog/internal/syslog"
	"sync/atomic"
)

// Two independent severity thresholds (console, host). A severity is emitted when it is <= the threshold.
type Gate struct {
	console atomic.Int32
	host    atomic.Int32
	ceiling int32
}

// Creates a gate with the given thresholds, both clamped to [0, ceiling]. Ceiling itself is clamped to Debug.
func New(consoleLevel, hostLevel, ceiling int) (gate *Gate) {
	gate = &Gate{
		ceiling: clamp(ceiling, int32(syslog.SevDebug)),
	}
	gate.SetConsoleLevel(consoleLevel)
	gate.SetHostLevel(hostLevel)
	return
}

func clamp(level int, max int32) (clamped int32) {
	switch {
	case level < 0:
		clamped = 0
	case int64(level) > int64(max):
		clamped = max
	default:
		clamped = int32(level)
	}
	return
}

func (gate *Gate) SetConsoleLevel(level int) {
	gate.console.Store(clamp(level, gate.ceiling))
}

func (gate *Gate) SetHostLevel(level int) {
	gate.host.Store(clamp(level, gate.ceiling))
}

func (gate *Gate) ConsoleLevel() int {
	return int(gate.console.Load())
}

func (gate *Gate) HostLevel() int {
	return int(gate.host.Load())
}

func (gate *Gate) Ceiling() int {
	return int(gate.ceiling)
}

func (gate *Gate) ShouldEmitConsole(pri syslog.Priority) bool {
	return int32(pri.Severity()) <= gate.console.Load()
}

func (gate *Gate) ShouldEmitHost(pri syslog.Priority) bool {
	return int32(pri.Severity()) <= gate.host.Load()
}

// Entry check: true if at least one path wants the event
func (gate *Gate) ShouldEmitAny(pri syslog.Priority) bool {
	return gate.ShouldEmitConsole(pri) || gate.ShouldEmitHost(pri)
}
