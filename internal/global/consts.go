package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available diagnostic severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v0.3.1"
	ProgBaseName string = "devsyslog"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Diagnostic event queue
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath       string = "/etc/devsyslog.json"
	DefaultOfflineQueuePath string = "/var/cache/devsyslog/offline.queue"
	DefaultIdentityFile     string = "/var/cache/devsyslog/device.id"

	// Collector defaults (well-known collector used when nothing is configured or discovered)
	DefaultCollectorHost string = "syslog.local"
	DefaultCollectorPort int    = 514
	DefaultMDNSService   string = "_syslog._udp"
	DefaultMDNSDomain    string = "local."

	// Wire defaults
	DefaultWireBufferSize int    = 512
	MinWireBufferSize     int    = 64
	DefaultFacility       string = "daemon"
	DefaultSeverity       string = "info"

	// Identity placeholders used before the scheduler/network identity is known
	HostPlaceholder  string = "@HOST@"
	PreSchedulerTask string = "preX"
	DefaultTaskName  string = "main"

	// Offline queue
	DefaultOfflineMaxBytes int64         = 64 * 1024
	DefaultDrainDelay      time.Duration = 10 * time.Millisecond

	// Bounded waits
	DefaultLockTimeout     time.Duration = 250 * time.Millisecond
	DefaultLinkWaitTimeout time.Duration = 2 * time.Second
	DefaultRetryBackoff    time.Duration = 500 * time.Millisecond
	DefaultMaxRetryBackoff time.Duration = 30 * time.Second
	DefaultDiscoverTimeout time.Duration = 3 * time.Second

	// Daemon
	DefaultIngestFunction     string        = "stdin"
	MaxIngestLineSize         int           = 64 * 1024
	DefaultQueueCheckInterval time.Duration = 30 * time.Second
	SendShutdownTimeout       time.Duration = 5 * time.Second

	// Console mirror file rotation
	DefaultConsoleFileMaxSizeMB  int = 10
	DefaultConsoleFileMaxBackups int = 3
	DefaultConsoleFileMaxAgeDays int = 14

	// Namespacing Name Components
	NSMetric     string = "Metrics"
	NSTest       string = "Test"
	NSSend       string = "Sender"
	NSPipeline   string = "Pipeline"
	NSConnection string = "Connection"
	NSOffline    string = "Offline"
	NSOut        string = "Output"
	NSIngest     string = "Ingest"
)
