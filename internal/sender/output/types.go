package output

import (
	"devsyslog/internal/sender/connection"
	"devsyslog/internal/sender/offline"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrLockTimeout = errors.New("transport lock wait timed out")

// What happened to one wire line
type Outcome int

const (
	Sent Outcome = iota
	Queued
	Dropped
)

func (outcome Outcome) String() string {
	switch outcome {
	case Sent:
		return "sent"
	case Queued:
		return "queued"
	case Dropped:
		return "dropped"
	}
	return "unknown"
}

// Delivers wire lines to the collector, falling back to the offline queue.
// All endpoint and queue I/O happens under the transport lock.
type Instance struct {
	Namespace   []string
	lock        *semaphore.Weighted
	lockTimeout time.Duration
	drainDelay  time.Duration
	conn        *connection.Manager
	queue       *offline.Queue
	host        func() string
	Metrics     MetricStorage
}

type MetricStorage struct {
	Sent         atomic.Uint64
	Queued       atomic.Uint64
	Dropped      atomic.Uint64
	LockTimeouts atomic.Uint64
	Drains       atomic.Uint64
}
