package syslog

import (
	"fmt"
	"strconv"
	"strings"
)

// Builds a wire priority from facility and severity codes
func Compose(facility, severity uint16) (pri Priority, err error) {
	if facility > FacLocal7 {
		err = fmt.Errorf("facility code %d out of range", facility)
		return
	}
	if severity > SevDebug {
		err = fmt.Errorf("severity code %d out of range", severity)
		return
	}
	pri = Priority(facility<<3 | severity)
	return
}

// Severity part (0..7) of the priority
func (pri Priority) Severity() uint16 {
	return uint16(uint8(pri) & SeverityMask)
}

// Facility part (0..23) of the priority
func (pri Priority) Facility() uint16 {
	return uint16(uint8(pri) >> 3)
}

// Applies the default facility to a bare severity (0..7). Values that already carry a facility are kept.
// Facility bits past local7 are folded to local7 with the severity untouched.
func (pri Priority) WithDefaultFacility(facility uint16) (full Priority) {
	full = pri
	if uint8(pri) <= SeverityMask && facility <= FacLocal7 {
		full = Priority(facility<<3 | uint16(pri))
	}
	if uint8(full) > MaxPriority {
		full = Priority(FacLocal7<<3 | full.Severity())
	}
	return
}

// Human readable "facility.severity" form
func (pri Priority) String() string {
	facility, err := CodeToFacility(pri.Facility())
	if err != nil {
		facility = fmt.Sprintf("fac%d", pri.Facility())
	}
	severity, _ := CodeToSeverity(pri.Severity())
	return facility + "." + severity
}

// Parses "facility.severity", a bare severity name, or a numeric priority
func ParsePriority(text string, defaultFacility uint16) (pri Priority, err error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		err = fmt.Errorf("empty priority")
		return
	}

	numeric, convErr := strconv.Atoi(text)
	if convErr == nil {
		if numeric < 0 || numeric > int(MaxPriority) {
			err = fmt.Errorf("priority %d out of range 0-%d", numeric, MaxPriority)
			return
		}
		pri = Priority(numeric).WithDefaultFacility(defaultFacility)
		return
	}

	facility := defaultFacility
	severityName := text
	if dot := strings.IndexByte(text, '.'); dot != -1 {
		facility, err = FacilityToCode(text[:dot])
		if err != nil {
			return
		}
		severityName = text[dot+1:]
	}

	severity, err := SeverityToCode(severityName)
	if err != nil {
		return
	}

	pri, err = Compose(facility, severity)
	return
}
