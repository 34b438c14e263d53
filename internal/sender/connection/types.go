package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrSchedulerStopped = errors.New("scheduler not running")
	ErrLinkDown         = errors.New("network link down")
	ErrShortWrite       = errors.New("short write")
	ErrNoCollector      = errors.New("no collector address")
	ErrNotResolved      = errors.New("collector address not resolved")
	ErrResolving        = errors.New("collector resolution already in progress")
	ErrBackoff          = errors.New("waiting out reconnect backoff")
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (state State) String() string {
	switch state {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// One open datagram socket to the collector
type Endpoint interface {
	Write(datagram []byte) (n int, err error)
	Close() (err error)
	LocalPort() (port int)
}

// Opens endpoints. localPort 0 lets the system choose.
type Transport interface {
	Open(ctx context.Context, localPort int, host string, port int) (endpoint Endpoint, err error)
}

// Finds the collector address
type Resolver interface {
	Resolve(ctx context.Context) (host string, port int, err error)
}

// Platform conditions required before a connection attempt
type Readiness interface {
	SchedulerRunning() (running bool)
	LinkUp() (up bool)
}

type Config struct {
	Transport        Transport
	Resolver         Resolver
	Readiness        Readiness
	Registry         *Registry // nil uses the process registry
	LocalPort        int
	LinkWaitTimeout  time.Duration
	LinkPollInterval time.Duration
	RetryBackoff     time.Duration // first delay after a failed resolve or open; 0 retries immediately
	MaxRetryBackoff  time.Duration
}

// Owns the outbound endpoint. Callers serialise I/O through the pipeline transport lock;
// the internal mutex only protects the endpoint, cached address and backoff fields.
type Manager struct {
	Namespace []string

	transport        Transport
	resolver         Resolver
	readiness        Readiness
	registry         *Registry
	localPort        int
	linkWaitTimeout  time.Duration
	linkPollInterval time.Duration
	retryBackoff     time.Duration
	maxRetryBackoff  time.Duration

	resolveMutex sync.Mutex // held for the duration of one Resolve call

	mutex      sync.Mutex
	endpoint   Endpoint
	boundTo    int // local port the endpoint is registered under
	host       string
	port       int
	cachedHost string // last resolved collector, reused until an open fails
	cachedPort int
	cached     bool
	retryAt    time.Time
	retryDelay time.Duration

	state   atomic.Int32
	Metrics MetricStorage
}

type MetricStorage struct {
	Connects       atomic.Uint64
	ConnectFails   atomic.Uint64
	Evictions      atomic.Uint64
	SendFails      atomic.Uint64
	TotalDatagrams atomic.Uint64
	SumBytes       atomic.Uint64
	MaxBytesSent   atomic.Uint64 // never reset; high-water mark over the manager lifetime
}

// Process-wide index of open endpoints by local port
type Registry struct {
	mutex  sync.Mutex
	byPort map[int]*Manager
}
