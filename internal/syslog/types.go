package syslog

type LogFacility struct {
	FacilityToCode map[string]uint16
	CodeToFacility map[uint16]string
}

type LogSeverity struct {
	SeverityToCode map[string]uint16
	CodeToSeverity map[uint16]string
}

// Wire priority value: facility*8 + severity (0..191)
type Priority uint8

const (
	SevEmergency uint16 = iota // system is unusable
	SevAlert                   // action must be taken immediately
	SevCritical
	SevError
	SevWarning
	SevNotice // normal but significant condition
	SevInfo
	SevDebug
)

const (
	FacKernel   uint16 = 0
	FacUser     uint16 = 1
	FacMail     uint16 = 2
	FacDaemon   uint16 = 3
	FacAuth     uint16 = 4
	FacSyslog   uint16 = 5
	FacLpr      uint16 = 6
	FacNews     uint16 = 7
	FacUUCP     uint16 = 8
	FacCron     uint16 = 9
	FacAuthPriv uint16 = 10
	FacFTP      uint16 = 11
	FacNTP      uint16 = 12
	FacLogAudit uint16 = 13
	FacLogAlert uint16 = 14
	FacClock    uint16 = 15
	FacLocal0   uint16 = 16
	FacLocal7   uint16 = 23

	SeverityMask uint8 = 0x07
	MaxPriority  uint8 = 191 // local7.debug
)
