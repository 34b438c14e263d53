// Daemon for continuous logging of input lines through the device pipeline to the collector
package sender

import (
	"context"
	"devsyslog/internal/atomics"
	"devsyslog/internal/global"
	"devsyslog/internal/lifecycle"
	"devsyslog/internal/logctx"
	senderMetrics "devsyslog/internal/sender/metrics"
	"devsyslog/internal/syslog"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
)

// Create new sending daemon instance. configPath is re-read on reload (empty disables reload).
func NewDaemon(cfg Config, configPath string) (new *Daemon) {
	cfg.setDefaults()
	new = &Daemon{
		cfg:        cfg,
		configPath: configPath,
	}
	return
}

// Builds the pipeline and starts background workers. input may be nil (no line ingestion).
func (daemon *Daemon) Start(globalCtx context.Context, input io.Reader, deps Dependencies) (err error) {
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSSend)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	hostID, err := ResolveHostID(deps.Fs, daemon.cfg)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"failed to resolve device identity, using placeholder: %v\n", err)
		err = nil
	}

	// Pipeline must keep working after cancel so shutdown can flush and drain
	daemon.Pipeline, err = New(context.WithoutCancel(daemon.ctx), daemon.cfg, deps)
	if err != nil {
		err = fmt.Errorf("failed to create pipeline: %w", err)
		daemon.cancel()
		return
	}
	if hostID != "" {
		daemon.Pipeline.SetHostID(hostID)
	}

	// Metrics Collector
	daemon.metricsCollector = senderMetrics.New(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge)
	for _, source := range daemon.Pipeline.MetricSources() {
		daemon.metricsCollector.AddSource(source)
	}
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search

	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()

	// Offline queue maintenance
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.maintainQueue(workerCtx)
	}()

	// Input lines. Not part of the wait group: a blocked read cannot be interrupted.
	if input != nil {
		daemon.inputDone = make(chan struct{})
		go func() {
			defer close(daemon.inputDone)
			daemon.ingest(workerCtx, input)
		}()
	}

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Systemd notify ready failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

func (daemon *Daemon) ingest(ctx context.Context, input io.Reader) {
	defaultPriority, err := syslog.Compose(daemon.cfg.DefaultFacility, syslog.SevInfo)
	if err != nil {
		defaultPriority = syslog.Priority(syslog.SevInfo)
	}

	_, err = daemon.Pipeline.Ingest(ctx, input, defaultPriority, &daemon.inflight)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
	}
}

// Checks the queue size periodically and drains a pending backlog
func (daemon *Daemon) maintainQueue(ctx context.Context) {
	ticker := time.NewTicker(daemon.cfg.QueueCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !daemon.Pipeline.CheckOfflineQueueSize() {
				continue
			}
			replayed, err := daemon.Pipeline.Drain()
			if err == nil && replayed > 0 {
				logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
					"drained %d queued lines\n", replayed)
			}
		}
	}
}

// Blocking daemon waiter. Returns after shutdown or when input (if any) reaches EOF.
func (daemon *Daemon) Run() {
	select {
	case <-daemon.ctx.Done():
	case <-daemon.inputDone:
	}
}

// Flushes pending summaries, waits for in-flight lines and closes the pipeline
func (daemon *Daemon) Shutdown() {
	if daemon.ctx == nil {
		return
	}
	daemon.stopOnce.Do(func() {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown started...\n")

		success, last := atomics.WaitUntilZero(daemon.ctx, &daemon.inflight, global.SendShutdownTimeout)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"%d input lines still in flight at shutdown\n", last)
		}

		// Stop workers before the final drain so nothing races the close
		daemon.cancel()

		done := make(chan struct{})
		go func() {
			daemon.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(global.SendShutdownTimeout):
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Timeout: workers did not stop within %v seconds\n", global.SendShutdownTimeout.Seconds())
		}

		if daemon.Pipeline == nil {
			return
		}
		daemon.Pipeline.Flush()
		if daemon.Pipeline.CheckOfflineQueueSize() {
			daemon.Pipeline.Drain()
		}
		err := daemon.Pipeline.Close()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"pipeline close failed: %v\n", err)
		}

		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	})
}

// Re-reads the config file and applies the severity thresholds. Other settings need a restart.
func (daemon *Daemon) Reload() (err error) {
	if daemon.configPath == "" {
		err = fmt.Errorf("no config file to reload from")
		return
	}

	fileConfig, err := LoadConfig(daemon.configPath)
	if err != nil {
		return
	}
	newCfg, err := fileConfig.NewDaemonConf()
	if err != nil {
		err = fmt.Errorf("invalid config: %w", err)
		return
	}

	daemon.Pipeline.SetConsoleLevel(newCfg.ConsoleLevel)
	daemon.Pipeline.SetHostLevel(newCfg.HostLevel)
	daemon.cfg.ConsoleLevel = newCfg.ConsoleLevel
	daemon.cfg.HostLevel = newCfg.HostLevel

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"thresholds now console=%d host=%d\n", daemon.Pipeline.ConsoleLevel(), daemon.Pipeline.HostLevel())
	return
}

// Writes the pipeline report followed by the latest metric slice
func (daemon *Daemon) Report(w io.Writer) (err error) {
	err = daemon.Pipeline.Report(w)
	if err != nil {
		return
	}
	if daemon.metricsCollector != nil {
		err = WriteMetricSlice(w, daemon.metricsCollector.Latest())
	}
	return
}
