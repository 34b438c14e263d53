package syslog

import (
	"fmt"
	"sync"
)

// Name tables for both facility and severity. Reverse maps are built once on first lookup.
var bidiOnce sync.Once
var logFacility = LogFacility{
	FacilityToCode: map[string]uint16{
		"kern":     FacKernel,
		"user":     FacUser,
		"mail":     FacMail,
		"daemon":   FacDaemon,
		"auth":     FacAuth,
		"syslog":   FacSyslog,
		"lpr":      FacLpr,
		"news":     FacNews,
		"uucp":     FacUUCP,
		"cron":     FacCron,
		"authpriv": FacAuthPriv,
		"ftp":      FacFTP,
		"ntp":      FacNTP,
		"security": FacLogAudit,
		"console":  FacLogAlert,
		"clock":    FacClock,
		"local0":   FacLocal0,
		"local1":   FacLocal0 + 1,
		"local2":   FacLocal0 + 2,
		"local3":   FacLocal0 + 3,
		"local4":   FacLocal0 + 4,
		"local5":   FacLocal0 + 5,
		"local6":   FacLocal0 + 6,
		"local7":   FacLocal7,
	},
	CodeToFacility: make(map[uint16]string),
}
var logSeverity = LogSeverity{
	SeverityToCode: map[string]uint16{
		"emerg":   SevEmergency,
		"alert":   SevAlert,
		"crit":    SevCritical,
		"err":     SevError,
		"warning": SevWarning,
		"notice":  SevNotice,
		"info":    SevInfo,
		"debug":   SevDebug,
	},
	CodeToSeverity: make(map[uint16]string),
}

// Aliases accepted on input only
var severityAliases = map[string]string{
	"emergency": "emerg",
	"critical":  "crit",
	"error":     "err",
	"warn":      "warning",
}

// Populate reverse lookup maps (read-only afterwards)
func initBidiMaps() {
	bidiOnce.Do(func() {
		for facility, code := range logFacility.FacilityToCode {
			logFacility.CodeToFacility[code] = facility
		}
		for severity, code := range logSeverity.SeverityToCode {
			logSeverity.CodeToSeverity[code] = severity
		}
	})
}

// Convert facility string to numeric code
func FacilityToCode(facility string) (code uint16, err error) {
	initBidiMaps()

	code, exists := logFacility.FacilityToCode[facility]
	if !exists {
		err = fmt.Errorf("unknown facility name: %s", facility)
	}
	return
}

// Convert severity string to numeric code
func SeverityToCode(severity string) (code uint16, err error) {
	initBidiMaps()

	if alias, ok := severityAliases[severity]; ok {
		severity = alias
	}

	code, exists := logSeverity.SeverityToCode[severity]
	if !exists {
		err = fmt.Errorf("unknown severity name: %s", severity)
	}
	return
}

// Convert facility code to string
func CodeToFacility(code uint16) (facility string, err error) {
	initBidiMaps()

	facility, exists := logFacility.CodeToFacility[code]
	if !exists {
		err = fmt.Errorf("unknown facility code: %d", code)
	}
	return
}

// Convert severity code to string
func CodeToSeverity(code uint16) (severity string, err error) {
	initBidiMaps()

	severity, exists := logSeverity.CodeToSeverity[code]
	if !exists {
		err = fmt.Errorf("unknown severity code: %d", code)
	}
	return
}
