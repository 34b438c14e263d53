package dedup

import (
	"devsyslog/internal/syslog"
	"sync"
	"time"
)

// Most recent distinct message and how many identical copies followed it
type State struct {
	Fingerprint uint32
	Priority    syslog.Priority
	Count       int // suppressed copies since the held message was emitted
	FirstMono   time.Duration
	LastMono    time.Duration
	FirstWall   time.Time
	LastWall    time.Time
	Task        string
	Function    string
	Core        int
}

type Verdict int

const (
	New Verdict = iota
	Repeat
)

// Where fingerprint scratch space lives
type BufferMode string

const (
	BufferShared  BufferMode = "shared"
	BufferPerCore BufferMode = "per-core"
)

type scratch struct {
	mutex sync.Mutex
	buf   []byte
}

type Deduplicator struct {
	mutex   sync.Mutex // state lock
	held    bool
	state   State
	mode    BufferMode
	shared  []byte
	perCore []*scratch
}
