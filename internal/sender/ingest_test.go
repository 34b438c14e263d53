package sender

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/syslog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngestLine(t *testing.T) {
	const fallback = syslog.Priority(30) // daemon.info

	tests := []struct {
		name   string
		raw    string
		expect IngestLine
	}{
		{"plain text", "disk nearly full", IngestLine{fallback, global.DefaultIngestFunction, "disk nearly full"}},
		{"priority prefix", "<27>disk failed", IngestLine{27, global.DefaultIngestFunction, "disk failed"}},
		{"priority and function", "<131>fan_ctl: rpm low\r\n", IngestLine{131, "fan_ctl", "rpm low"}},
		{"function only", "watchdog: kicked", IngestLine{fallback, "watchdog", "kicked"}},
		{"colon inside sentence", "note that x: y", IngestLine{fallback, global.DefaultIngestFunction, "note that x: y"}},
		{"priority out of range", "<192>text", IngestLine{fallback, global.DefaultIngestFunction, "<192>text"}},
		{"not a priority", "<abc>text", IngestLine{fallback, global.DefaultIngestFunction, "<abc>text"}},
		{"unterminated", "<12 text", IngestLine{fallback, global.DefaultIngestFunction, "<12 text"}},
		{"bare severity", "<3>boom", IngestLine{3, global.DefaultIngestFunction, "boom"}},
		{"empty", "", IngestLine{fallback, global.DefaultIngestFunction, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ParseIngestLine(tt.raw, fallback))
		})
	}
}

func TestIngest(t *testing.T) {
	h := newHarness(t, testConfig())

	input := strings.NewReader("first line\n\n<27>pump: stalled\nlast line without newline")
	var inflight atomic.Uint64

	lines, err := h.pipeline.Ingest(context.Background(), input, 30, &inflight)
	require.NoError(t, err)
	assert.Equal(t, 3, lines)
	assert.Zero(t, inflight.Load())

	datagrams := h.transport.datagrams()
	require.Len(t, datagrams, 3)
	stalled := parseWire(t, datagrams[1])
	assert.Equal(t, uint8(27), stalled.Priority)
	assert.Equal(t, "pump", stalled.ProcID)
	assert.Equal(t, "stalled", stalled.Text)

	// Percent signs are logged literally
	_, err = h.pipeline.Ingest(context.Background(), strings.NewReader("load 100%d\n"), 30, nil)
	require.NoError(t, err)
	assert.Contains(t, h.console.String(), "stdin load 100%d")
}

func TestIngestCancelled(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines, err := h.pipeline.Ingest(ctx, strings.NewReader("one\ntwo\n"), 30, nil)
	assert.NoError(t, err)
	assert.Zero(t, lines)
}
