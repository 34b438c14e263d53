// End to end delivery against a loopback collector
package integration

import (
	"bytes"
	"context"
	"devsyslog/internal/format"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"devsyslog/internal/sender"
	"devsyslog/internal/sender/connection"
	"devsyslog/internal/syslog"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectorConfig(port int) (cfg sender.Config) {
	cfg = sender.DefaultConfig()
	cfg.CollectorHost = "127.0.0.1"
	cfg.CollectorPort = port
	cfg.Hostname = "device01"
	cfg.ColorMode = format.ColorNever
	cfg.LinkWaitTimeout = time.Millisecond
	cfg.DrainDelay = time.Microsecond
	cfg.MetricCollectionInterval = 50 * time.Millisecond
	return
}

func TestDaemonDeliversIngestedLines(t *testing.T) {
	collector := startCollector(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logctx.New(ctx, global.NSTest, global.VerbosityStandard, ctx.Done())

	platform := &testPlatform{}
	platform.link.Store(true)

	input := strings.Join([]string{
		"<3>pump: pressure high",
		"<3>pump: pressure high",
		"<3>pump: pressure high",
		"<6>pump: pressure normal",
		"plain line from stdin",
	}, "\n") + "\n"

	var console bytes.Buffer
	daemon := sender.NewDaemon(collectorConfig(collector.port()), "")
	err := daemon.Start(ctx, strings.NewReader(input), sender.Dependencies{
		Platform: platform,
		Registry: connection.NewRegistry(),
		Fs:       afero.NewMemMapFs(),
		Console:  &console,
	})
	require.NoError(t, err)

	daemon.Run() // returns at end of input
	daemon.Shutdown()

	messages := collector.waitFor(t, 4)
	require.Len(t, messages, 4)

	assert.Equal(t, "pressure high", messages[0].Text)
	assert.Equal(t, uint8(syslog.FacDaemon<<3|syslog.SevError), messages[0].Priority)
	assert.Equal(t, "device01", messages[0].Hostname)
	assert.Equal(t, "ctl/1", messages[0].AppName)
	assert.Equal(t, "pump", messages[0].ProcID)

	assert.Contains(t, messages[1].Text, "repeated 2 times")
	assert.Equal(t, "pressure normal", messages[2].Text)

	assert.Equal(t, "plain line from stdin", messages[3].Text)
	assert.Equal(t, global.DefaultIngestFunction, messages[3].ProcID)
	assert.Equal(t, uint8(syslog.FacDaemon<<3|syslog.SevInfo), messages[3].Priority)

	assert.Equal(t, uint64(4), daemon.Pipeline.Metrics.TotalSent.Load())
	assert.Contains(t, console.String(), "pressure high")
}

func TestOfflineQueueReplaysToCollector(t *testing.T) {
	collector := startCollector(t)

	platform := &testPlatform{}
	fs := afero.NewMemMapFs()
	pipeline, err := sender.New(context.Background(), collectorConfig(collector.port()), sender.Dependencies{
		Platform: platform,
		Registry: connection.NewRegistry(),
		Fs:       fs,
		Console:  &bytes.Buffer{},
	})
	require.NoError(t, err)
	defer pipeline.Close()

	for i := range 3 {
		pipeline.Log(syslog.Priority(syslog.SevWarning), "valve", "stuck %d", i)
	}
	assert.Equal(t, uint64(3), pipeline.Metrics.TotalQueued.Load())
	assert.True(t, pipeline.CheckOfflineQueueSize())

	platform.link.Store(true)
	replayed, err := pipeline.Drain()
	require.NoError(t, err)
	assert.Equal(t, 3, replayed)

	messages := collector.waitFor(t, 3)
	require.Len(t, messages, 3)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("stuck %d", i), msg.Text)
		assert.Equal(t, "device01", msg.Hostname)
	}

	exists, err := afero.Exists(fs, global.DefaultOfflineQueuePath)
	require.NoError(t, err)
	assert.False(t, exists)

	var report bytes.Buffer
	require.NoError(t, pipeline.Report(&report))
	assert.Contains(t, report.String(), "state=connected")
}
