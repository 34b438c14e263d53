package sender

import (
	"bytes"
	"context"
	"devsyslog/internal/format"
	"devsyslog/internal/sender/connection"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

type fakePlatform struct {
	running atomic.Bool
	link    atomic.Bool
	task    string
	core    int
}

func newPlatform() *fakePlatform {
	platform := &fakePlatform{task: "main"}
	platform.running.Store(true)
	platform.link.Store(true)
	return platform
}

func (platform *fakePlatform) SchedulerRunning() bool { return platform.running.Load() }
func (platform *fakePlatform) LinkUp() bool           { return platform.link.Load() }
func (platform *fakePlatform) TaskName() string       { return platform.task }
func (platform *fakePlatform) CoreID() int            { return platform.core }

// Records datagrams; failures counts writes still to fail
type captureTransport struct {
	mutex    sync.Mutex
	sent     []string
	opens    int
	failures int
}

type captureEndpoint struct {
	transport *captureTransport
	port      int
	closed    atomic.Bool
}

func (transport *captureTransport) Open(ctx context.Context, localPort int, host string, port int) (connection.Endpoint, error) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.opens++
	return &captureEndpoint{transport: transport, port: localPort}, nil
}

func (endpoint *captureEndpoint) Write(datagram []byte) (int, error) {
	transport := endpoint.transport
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	if transport.failures > 0 {
		transport.failures--
		return 0, errInjected
	}
	transport.sent = append(transport.sent, string(datagram))
	return len(datagram), nil
}

func (endpoint *captureEndpoint) Close() error {
	endpoint.closed.Store(true)
	return nil
}

func (endpoint *captureEndpoint) LocalPort() int { return endpoint.port }

func (transport *captureTransport) failNext(n int) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.failures = n
}

func (transport *captureTransport) datagrams() []string {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	return append([]string(nil), transport.sent...)
}

func (transport *captureTransport) openCount() int {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	return transport.opens
}

type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (buffer *syncBuffer) Write(p []byte) (int, error) {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buf.Write(p)
}

func (buffer *syncBuffer) lines() []string {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	text := strings.TrimSuffix(buffer.buf.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (buffer *syncBuffer) String() string {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buf.String()
}

type panicRenderer struct{}

func (panicRenderer) Render(format string, args ...any) string {
	panic("renderer exploded")
}

type harness struct {
	pipeline  *Pipeline
	platform  *fakePlatform
	transport *captureTransport
	console   *syncBuffer
	fs        afero.Fs
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ColorMode = format.ColorNever
	cfg.LinkWaitTimeout = time.Millisecond
	cfg.DrainDelay = time.Microsecond
	return cfg
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		platform:  newPlatform(),
		transport: &captureTransport{},
		console:   &syncBuffer{},
		fs:        afero.NewMemMapFs(),
	}

	pipeline, err := New(context.Background(), cfg, Dependencies{
		Platform:  h.platform,
		Transport: h.transport,
		Resolver:  connection.Static{Host: "192.0.2.10", Port: 514},
		Registry:  connection.NewRegistry(),
		Fs:        h.fs,
		Console:   h.console,
	})
	require.NoError(t, err)
	h.pipeline = pipeline
	return h
}
