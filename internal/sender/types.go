package sender

import (
	"context"
	"devsyslog/internal/dedup"
	"devsyslog/internal/format"
	"devsyslog/internal/gate"
	"devsyslog/internal/metrics"
	"devsyslog/internal/sender/connection"
	senderMetrics "devsyslog/internal/sender/metrics"
	"devsyslog/internal/sender/output"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// Config file layout, shared by JSON and YAML
type JSONConfig struct {
	Collector struct {
		Address         string `json:"address" yaml:"address"`
		Port            int    `json:"port,omitempty" yaml:"port,omitempty"`
		LocalPort       int    `json:"localPort,omitempty" yaml:"localPort,omitempty"`
		Discover        bool   `json:"discover,omitempty" yaml:"discover,omitempty"`
		Service         string `json:"service,omitempty" yaml:"service,omitempty"`
		Domain          string `json:"domain,omitempty" yaml:"domain,omitempty"`
		Interface       string `json:"interface,omitempty" yaml:"interface,omitempty"`
		DiscoverTimeout string `json:"discoverTimeout,omitempty" yaml:"discoverTimeout,omitempty"`
	} `json:"collector" yaml:"collector"`
	Identity struct {
		Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
		File     string `json:"file,omitempty" yaml:"file,omitempty"`
		Task     string `json:"task,omitempty" yaml:"task,omitempty"`
	} `json:"identity" yaml:"identity"`
	Levels struct {
		Console  string `json:"console,omitempty" yaml:"console,omitempty"`
		Host     string `json:"host,omitempty" yaml:"host,omitempty"`
		Ceiling  string `json:"ceiling,omitempty" yaml:"ceiling,omitempty"`
		Facility string `json:"facility,omitempty" yaml:"facility,omitempty"`
	} `json:"levels" yaml:"levels"`
	Wire struct {
		BufferSize int    `json:"bufferSize,omitempty" yaml:"bufferSize,omitempty"`
		BufferMode string `json:"bufferMode,omitempty" yaml:"bufferMode,omitempty"`
	} `json:"wire" yaml:"wire"`
	Console struct {
		Color      string `json:"color,omitempty" yaml:"color,omitempty"`
		File       string `json:"file,omitempty" yaml:"file,omitempty"`
		MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
		MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
		MaxAgeDays int    `json:"maxAgeDays,omitempty" yaml:"maxAgeDays,omitempty"`
		Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
	} `json:"console" yaml:"console"`
	Offline struct {
		Enabled    bool   `json:"enabled" yaml:"enabled"`
		Path       string `json:"path,omitempty" yaml:"path,omitempty"`
		MaxBytes   int64  `json:"maxBytes,omitempty" yaml:"maxBytes,omitempty"`
		DrainDelay string `json:"drainDelay,omitempty" yaml:"drainDelay,omitempty"`
	} `json:"offline" yaml:"offline"`
	Timeouts struct {
		Lock     string `json:"lock,omitempty" yaml:"lock,omitempty"`
		LinkWait string `json:"linkWait,omitempty" yaml:"linkWait,omitempty"`
		Retry    string `json:"retry,omitempty" yaml:"retry,omitempty"`
		MaxRetry string `json:"maxRetry,omitempty" yaml:"maxRetry,omitempty"`
	} `json:"timeouts" yaml:"timeouts"`
	Daemon struct {
		QueueCheckInterval string `json:"queueCheckInterval,omitempty" yaml:"queueCheckInterval,omitempty"`
	} `json:"daemon" yaml:"daemon"`
	Metrics struct {
		Interval string `json:"collectionInterval,omitempty" yaml:"collectionInterval,omitempty"`
		MaxAge   string `json:"maximumRetention,omitempty" yaml:"maximumRetention,omitempty"`
	} `json:"metrics" yaml:"metrics"`
}

type Config struct {
	// Collector
	CollectorHost   string
	CollectorPort   int
	LocalPort       int
	DiscoverMDNS    bool
	MDNSService     string
	MDNSDomain      string
	MDNSInterface   string
	DiscoverTimeout time.Duration

	// Identity
	Hostname     string
	IdentityFile string
	TaskName     string

	// Severity thresholds (0 emerg ... 7 debug)
	ConsoleLevel    int
	HostLevel       int
	LevelCeiling    int
	DefaultFacility uint16

	// Wire buffer
	BufferSize int
	BufferMode dedup.BufferMode

	// Console
	ColorMode         format.ColorMode
	ConsoleFile       string
	ConsoleMaxSizeMB  int
	ConsoleMaxBackups int
	ConsoleMaxAgeDays int
	ConsoleCompress   bool

	// Offline queue
	OfflineEnabled   bool
	OfflineQueuePath string
	OfflineMaxBytes  int64
	DrainDelay       time.Duration

	// Bounded waits
	LockTimeout     time.Duration
	LinkWaitTimeout time.Duration // only explicit drains wait for the link
	RetryBackoff    time.Duration // after a failed resolve or open, doubling up to MaxRetryBackoff
	MaxRetryBackoff time.Duration

	// Daemon
	QueueCheckInterval       time.Duration
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

// Task and core identity plus readiness of the host platform
type Platform interface {
	connection.Readiness
	TaskName() (name string) // empty when unknown
	CoreID() (core int)
}

// Explicit caller identity for LogFrom
type Origin struct {
	Task string
	Core int
}

// Replaceable collaborators. Zero values select the defaults.
type Dependencies struct {
	Platform  Platform
	Transport connection.Transport
	Resolver  connection.Resolver
	Registry  *connection.Registry
	Fs        afero.Fs // nil with offline enabled uses the OS filesystem
	Console   io.Writer
	Renderer  format.Renderer
}

// Log pipeline: gate, dedup, console, wire, deliver-or-queue
type Pipeline struct {
	Namespace []string
	ctx       context.Context // diagnostics only
	cfg       Config

	platform  Platform
	renderer  format.Renderer
	gate      *gate.Gate
	dedup     *dedup.Deduplicator
	formatter *format.Formatter
	plain     *format.Formatter // mirror file lines
	output    *output.Instance

	consoleMutex sync.Mutex
	console      io.Writer
	mirror       io.WriteCloser

	start   time.Time
	hostID  atomic.Pointer[string]
	Metrics MetricStorage
}

type MetricStorage struct {
	Logged        atomic.Uint64
	Suppressed    atomic.Uint64
	Summaries     atomic.Uint64
	ConsoleLines  atomic.Uint64
	MaxConsoleLen atomic.Uint64

	// Lifetime outcome totals for reports
	TotalSent    atomic.Uint64
	TotalQueued  atomic.Uint64
	TotalDropped atomic.Uint64
}

type Daemon struct {
	cfg        Config
	configPath string
	ctx        context.Context
	cancel     context.CancelFunc

	wg       sync.WaitGroup
	inflight atomic.Uint64
	stopOnce sync.Once

	Pipeline         *Pipeline
	metricsCollector *senderMetrics.Gatherer
	inputDone        chan struct{}

	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
}
