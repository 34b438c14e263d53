package logctx

import (
	"sync"
	"time"
)

// One diagnostic event
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Buffered diagnostic logger carried in a context
type Logger struct {
	ID         string
	CreatedAt  time.Time
	queue      []Event    // event buffer
	mutex      sync.Mutex // protects buffer and level
	cond       *sync.Cond // signals new events
	Done       <-chan struct{}
	PrintLevel int             // Highest verbosity recorded
	wg         *sync.WaitGroup // Holds exit until watchers are done
}

// Collapses bursts of one identical message in the watcher output
type repeatTracker struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}
