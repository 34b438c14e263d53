// Device log pipeline: severity gate, duplicate suppression, console output and collector delivery
package sender

import (
	"context"
	"devsyslog/internal/atomics"
	"devsyslog/internal/dedup"
	"devsyslog/internal/format"
	"devsyslog/internal/gate"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"devsyslog/internal/network"
	"devsyslog/internal/sender/connection"
	"devsyslog/internal/sender/offline"
	"devsyslog/internal/sender/output"
	"devsyslog/internal/syslog"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Builds a pipeline. ctx carries the diagnostic logger and is used for internal I/O.
func New(ctx context.Context, cfg Config, deps Dependencies) (pipeline *Pipeline, err error) {
	cfg.setDefaults()

	if cfg.CollectorPort < 1 || cfg.CollectorPort > 65535 {
		err = fmt.Errorf("invalid collector port %d", cfg.CollectorPort)
		return
	}
	if cfg.LocalPort < 0 || cfg.LocalPort > 65535 {
		err = fmt.Errorf("invalid local port %d", cfg.LocalPort)
		return
	}

	pipeline = &Pipeline{
		Namespace: []string{global.NSPipeline},
		ctx:       logctx.AppendCtxTag(ctx, global.NSPipeline),
		cfg:       cfg,
		platform:  deps.Platform,
		renderer:  deps.Renderer,
		console:   deps.Console,
		start:     time.Now(),
	}
	if pipeline.platform == nil {
		pipeline.platform = HostPlatform{Task: cfg.TaskName}
	}
	if pipeline.console == nil {
		pipeline.console = os.Stdout
	}

	bound := cfg.BufferSize
	if net.ParseIP(cfg.CollectorHost) != nil {
		bound = network.CapToPath(bound, cfg.CollectorHost)
	}
	if pipeline.renderer == nil {
		// Text never needs more than the whole datagram
		pipeline.renderer = format.SprintfRenderer{Limit: bound}
	}

	pipeline.gate = gate.New(cfg.ConsoleLevel, cfg.HostLevel, cfg.LevelCeiling)
	pipeline.dedup = dedup.NewDeduplicator(cfg.BufferMode, runtime.NumCPU())
	pipeline.formatter = format.New(bound, format.ColorEnabled(cfg.ColorMode, pipeline.console))

	if cfg.ConsoleFile != "" {
		pipeline.plain = format.New(bound, false)
		pipeline.mirror = &lumberjack.Logger{
			Filename:   cfg.ConsoleFile,
			MaxSize:    cfg.ConsoleMaxSizeMB,
			MaxBackups: cfg.ConsoleMaxBackups,
			MaxAge:     cfg.ConsoleMaxAgeDays,
			Compress:   cfg.ConsoleCompress,
		}
	}

	filesystem := deps.Fs
	if cfg.OfflineEnabled && filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	if !cfg.OfflineEnabled {
		filesystem = nil
	}

	resolver := deps.Resolver
	if resolver == nil {
		resolver = newResolver(cfg)
	}
	transport := deps.Transport
	if transport == nil {
		transport = connection.UDPTransport{}
	}

	conn := connection.New(pipeline.Namespace, connection.Config{
		Transport:       transport,
		Resolver:        resolver,
		Readiness:       pipeline.platform,
		Registry:        deps.Registry,
		LocalPort:       cfg.LocalPort,
		LinkWaitTimeout: cfg.LinkWaitTimeout,
		RetryBackoff:    cfg.RetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
	queue := offline.New(pipeline.Namespace, filesystem, cfg.OfflineQueuePath, cfg.OfflineMaxBytes)
	pipeline.output = output.New(pipeline.Namespace, conn, queue, cfg.LockTimeout, cfg.DrainDelay, pipeline.HostID)

	if cfg.Hostname != "" {
		pipeline.SetHostID(cfg.Hostname)
	}
	return
}

// Configured address first, then mDNS when enabled, then the well-known collector
func newResolver(cfg Config) (resolver connection.Resolver) {
	var chain connection.Chain
	if cfg.CollectorHost != "" {
		chain = append(chain, connection.Static{Host: cfg.CollectorHost, Port: cfg.CollectorPort})
	}
	if cfg.DiscoverMDNS {
		chain = append(chain, connection.MDNS{
			Service:   cfg.MDNSService,
			Domain:    cfg.MDNSDomain,
			Interface: cfg.MDNSInterface,
			Timeout:   cfg.DiscoverTimeout,
		})
	}
	chain = append(chain, connection.WellKnown())
	resolver = chain
	return
}

// Records the device identity used in the HOSTNAME field and when draining the offline queue
func (pipeline *Pipeline) SetHostID(id string) {
	pipeline.hostID.Store(&id)
}

// Device identity, empty until set
func (pipeline *Pipeline) HostID() (id string) {
	stored := pipeline.hostID.Load()
	if stored != nil {
		id = *stored
	}
	return
}

func (pipeline *Pipeline) origin() (origin Origin) {
	if !pipeline.platform.SchedulerRunning() {
		origin.Task = global.PreSchedulerTask
	} else {
		origin.Task = pipeline.platform.TaskName()
		if origin.Task == "" {
			origin.Task = pipeline.cfg.TaskName
		}
	}
	origin.Core = pipeline.platform.CoreID()
	return
}

// Logs a message from the current task. Priorities 0-7 receive the default facility.
func (pipeline *Pipeline) Log(priority syslog.Priority, function string, format string, args ...any) {
	pipeline.LogFrom(pipeline.origin(), priority, function, format, args...)
}

// Logs a message on behalf of an explicit task and core
func (pipeline *Pipeline) LogFrom(origin Origin, priority syslog.Priority, function string, format string, args ...any) {
	defer pipeline.recoverPanic("log")

	priority = priority.WithDefaultFacility(pipeline.cfg.DefaultFacility)
	if !pipeline.gate.ShouldEmitAny(priority) {
		return
	}

	if origin.Task == "" {
		origin.Task = pipeline.cfg.TaskName
	}

	event := formatEvent(priority, origin, function, time.Since(pipeline.start), time.Now())
	event.Text = pipeline.renderer.Render(format, args...)
	pipeline.emit(event)
}

// Logs a platform error code at Error severity and returns the code as a negative value
func (pipeline *Pipeline) LogError(function string, code int) (normalised int) {
	if code == 0 {
		return
	}
	normalised = code
	if normalised > 0 {
		normalised = -normalised
	}
	pipeline.Log(syslog.Priority(syslog.SevError), function, "%s", describeErrno(code))
	return
}

func formatEvent(priority syslog.Priority, origin Origin, function string, mono time.Duration, wall time.Time) (event format.Event) {
	event = format.Event{
		Priority: priority,
		Core:     origin.Core,
		Task:     origin.Task,
		Function: function,
		Mono:     mono,
		Wall:     wall,
	}
	return
}

func (pipeline *Pipeline) emit(event format.Event) {
	pipeline.Metrics.Logged.Add(1)

	verdict, previous := pipeline.dedup.Classify(event)
	if verdict == dedup.Repeat {
		pipeline.Metrics.Suppressed.Add(1)
		return
	}

	if previous.Count > 0 {
		pipeline.Metrics.Summaries.Add(1)
		pipeline.deliver(previous.Summary())
	}
	pipeline.deliver(event)
}

// Console first, then the host path when the host threshold allows
func (pipeline *Pipeline) deliver(event format.Event) {
	if pipeline.gate.ShouldEmitConsole(event.Priority) {
		pipeline.writeConsole(event)
	}

	if !pipeline.gate.ShouldEmitHost(event.Priority) {
		return
	}

	line := pipeline.formatter.Wire(event, pipeline.HostID())
	outcome := pipeline.output.Deliver(pipeline.ctx, line)
	switch outcome {
	case output.Sent:
		pipeline.Metrics.TotalSent.Add(1)
	case output.Queued:
		pipeline.Metrics.TotalQueued.Add(1)
	case output.Dropped:
		pipeline.Metrics.TotalDropped.Add(1)
	}
}

func (pipeline *Pipeline) writeConsole(event format.Event) {
	line := pipeline.formatter.Console(event)

	var mirrorLine string
	if pipeline.mirror != nil {
		mirrorLine = pipeline.plain.Console(event)
	}

	pipeline.consoleMutex.Lock()
	defer pipeline.consoleMutex.Unlock()

	n, _ := io.WriteString(pipeline.console, line+"\n")
	if pipeline.mirror != nil {
		io.WriteString(pipeline.mirror, mirrorLine+"\n")
	}
	pipeline.Metrics.ConsoleLines.Add(1)
	atomics.StoreMax(&pipeline.Metrics.MaxConsoleLen, uint64(n))
}

// Writes text to the console as is. Nothing reaches the collector.
func (pipeline *Pipeline) Print(text string) (n int) {
	defer pipeline.recoverPanic("print")

	pipeline.consoleMutex.Lock()
	defer pipeline.consoleMutex.Unlock()

	n, _ = io.WriteString(pipeline.console, text)
	if pipeline.mirror != nil {
		io.WriteString(pipeline.mirror, text)
	}
	atomics.StoreMax(&pipeline.Metrics.MaxConsoleLen, uint64(n))
	return
}

// Lets fn fill a buffer of the wire buffer size and writes the bytes it reports to the console
func (pipeline *Pipeline) PrintFunc(fn func(buf []byte) (n int)) (n int) {
	defer pipeline.recoverPanic("print")

	buf := make([]byte, pipeline.formatter.Bound())
	n = fn(buf)
	if n <= 0 {
		return
	}
	n = min(n, len(buf))

	pipeline.consoleMutex.Lock()
	defer pipeline.consoleMutex.Unlock()

	written, _ := pipeline.console.Write(buf[:n])
	if pipeline.mirror != nil {
		pipeline.mirror.Write(buf[:n])
	}
	atomics.StoreMax(&pipeline.Metrics.MaxConsoleLen, uint64(written))
	return
}

// Emits any pending repeat summary
func (pipeline *Pipeline) Flush() {
	defer pipeline.recoverPanic("flush")

	pending, ok := pipeline.dedup.Flush()
	if !ok {
		return
	}
	pipeline.Metrics.Summaries.Add(1)
	pipeline.deliver(pending.Summary())
}

func (pipeline *Pipeline) SetConsoleLevel(level int) {
	pipeline.gate.SetConsoleLevel(level)
}

func (pipeline *Pipeline) SetHostLevel(level int) {
	pipeline.gate.SetHostLevel(level)
}

func (pipeline *Pipeline) ConsoleLevel() int {
	return pipeline.gate.ConsoleLevel()
}

func (pipeline *Pipeline) HostLevel() int {
	return pipeline.gate.HostLevel()
}

// Truncates an over-cap offline queue and reports whether a drain is pending
func (pipeline *Pipeline) CheckOfflineQueueSize() (drainPending bool) {
	queue := pipeline.output.Queue()
	err := pipeline.output.WithLock(pipeline.ctx, func() {
		drainPending = queue.CheckSize()
	})
	if err != nil {
		// Lock busy: report what is already known
		drainPending = queue.DrainPending()
	}
	return
}

// Replays the offline queue now if the collector is reachable
func (pipeline *Pipeline) Drain() (replayed int, err error) {
	replayed, err = pipeline.output.Drain(pipeline.ctx)
	if err != nil {
		logctx.LogEvent(pipeline.ctx, global.VerbosityProgress, global.WarnLog,
			"offline queue drain failed: %v\n", err)
	}
	return
}

// Flushes pending summaries, closes the endpoint and the console mirror
func (pipeline *Pipeline) Close() (err error) {
	pipeline.Flush()

	err = pipeline.output.Close(pipeline.ctx)
	if err != nil {
		pipeline.output.Connection().Disconnect()
		err = nil
	}

	if pipeline.mirror != nil {
		pipeline.consoleMutex.Lock()
		err = pipeline.mirror.Close()
		pipeline.consoleMutex.Unlock()
	}
	return
}

func (pipeline *Pipeline) recoverPanic(operation string) {
	fatalError := recover()
	if fatalError == nil {
		return
	}
	stack := debug.Stack()
	logctx.LogEvent(pipeline.ctx, global.VerbosityStandard, global.ErrorLog,
		"panic in %s: %v\n%s", operation, fatalError, stack)
}

// Collector address as host:port, empty when never connected
func (pipeline *Pipeline) remoteAddress() (address string) {
	host, port := pipeline.output.Connection().Remote()
	if host == "" {
		return
	}
	address = net.JoinHostPort(host, strconv.Itoa(port))
	return
}
