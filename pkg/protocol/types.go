package protocol

import "time"

// One syslog record as carried in a single datagram:
//
//	<PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID STRUCTURED-DATA MSG
//
// Structured data is always NILVALUE.
type Message struct {
	Priority  uint8     // facility*8 + severity
	Timestamp time.Time // zero encodes as NILVALUE
	Hostname  string
	AppName   string // origin task and core, "task/core"
	ProcID    string // originating function
	MsgID     string // empty encodes as NILVALUE
	Text      string
}
