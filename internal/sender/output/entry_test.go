package output

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/sender/connection"
	"devsyslog/internal/sender/offline"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const queuePath = "/queue/offline.queue"

func wireLine(i int) string {
	return fmt.Sprintf("<27>1 2026-03-05T10:56:58.000000Z @HOST@ main/0 f - - message %d", i)
}

type harness struct {
	transport *recordingTransport
	link      *switchableLink
	fs        afero.Fs
	instance  *Instance
}

func newHarness(persist bool) *harness {
	h := &harness{
		transport: &recordingTransport{failAfter: -1},
		link:      &switchableLink{},
	}
	if persist {
		h.fs = afero.NewMemMapFs()
	}
	conn := newTestConnection(h.transport, h.link)
	queue := offline.New([]string{"Test"}, h.fs, queuePath, 1<<16)
	h.instance = New([]string{"Test"}, conn, queue, 50*time.Millisecond, 0, func() string { return "device01" })
	return h
}

func TestDeliverOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		linkUp  bool
		persist bool
		expect  Outcome
	}{
		{"live connection sends", true, true, Sent},
		{"link down queues", false, true, Queued},
		{"link down without persistence drops", false, false, Dropped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.persist)
			h.link.up.Store(tt.linkUp)

			outcome := h.instance.Deliver(context.Background(), []byte(wireLine(0)))
			assert.Equal(t, tt.expect, outcome)
		})
	}
}

func TestOfflineRoundTrip(t *testing.T) {
	h := newHarness(true)
	ctx := context.Background()

	const total = 4
	for i := 0; i < total; i++ {
		require.Equal(t, Queued, h.instance.Deliver(ctx, []byte(wireLine(i))))
	}
	assert.Empty(t, h.transport.datagrams())

	// Reconnect: backlog replays in order with the host patched, then the new line goes out
	h.link.up.Store(true)
	require.Equal(t, Sent, h.instance.Deliver(ctx, []byte(wireLine(total))))

	sent := h.transport.datagrams()
	require.Len(t, sent, total+1)
	for i := 0; i < total; i++ {
		assert.Equal(t, strings.Replace(wireLine(i), "@HOST@", "device01", 1), sent[i])
	}
	assert.Equal(t, wireLine(total), sent[total])

	exists, err := afero.Exists(h.fs, queuePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDrainFailureKeepsOrder(t *testing.T) {
	h := newHarness(true)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.Equal(t, Queued, h.instance.Deliver(ctx, []byte(wireLine(i))))
	}

	// Collector accepts two datagrams then fails
	h.transport.setFailAfter(2)
	h.link.up.Store(true)
	assert.Equal(t, Queued, h.instance.Deliver(ctx, []byte(wireLine(4))))

	content, err := afero.ReadFile(h.fs, queuePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	assert.Equal(t, []string{wireLine(2), wireLine(3), wireLine(4)}, lines)

	// Next call reconnects and finishes the job
	h.transport.setFailAfter(-1)
	require.Equal(t, Sent, h.instance.Deliver(ctx, []byte(wireLine(5))))
	assert.Len(t, h.transport.datagrams(), 6)
	assert.GreaterOrEqual(t, h.transport.opens, 2)
}

func TestSendFailureQueuesAndReconnects(t *testing.T) {
	h := newHarness(true)
	ctx := context.Background()
	h.link.up.Store(true)

	require.Equal(t, Sent, h.instance.Deliver(ctx, []byte(wireLine(0))))
	h.transport.setFailAfter(1)
	assert.Equal(t, Queued, h.instance.Deliver(ctx, []byte(wireLine(1))))

	h.transport.setFailAfter(-1)
	require.Equal(t, Sent, h.instance.Deliver(ctx, []byte(wireLine(2))))
	assert.Equal(t, 2, h.transport.opens, "send failure forces a reconnect on the next call")
	assert.Len(t, h.transport.datagrams(), 3)
}

func TestLockTimeoutDrops(t *testing.T) {
	h := newHarness(true)
	h.link.up.Store(true)
	ctx := context.Background()

	release := make(chan struct{})
	held := make(chan struct{})
	go h.instance.WithLock(ctx, func() {
		close(held)
		<-release
	})
	<-held

	start := time.Now()
	outcome := h.instance.Deliver(ctx, []byte(wireLine(0)))
	close(release)

	assert.Equal(t, Dropped, outcome)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, uint64(1), h.instance.Metrics.LockTimeouts.Load())
	assert.Empty(t, h.transport.datagrams())
}

func TestLinkDownConcurrentDeliveriesQueue(t *testing.T) {
	transport := &recordingTransport{failAfter: -1}
	conn := connection.New([]string{"Test"}, connection.Config{
		Transport:       transport,
		Resolver:        connection.Static{Host: "192.0.2.10", Port: 514},
		Readiness:       &switchableLink{},
		Registry:        connection.NewRegistry(),
		LinkWaitTimeout: global.DefaultLinkWaitTimeout,
	})
	queue := offline.New([]string{"Test"}, afero.NewMemMapFs(), queuePath, 1<<16)
	instance := New([]string{"Test"}, conn, queue, global.DefaultLockTimeout, 0, nil)
	ctx := context.Background()

	start := time.Now()
	require.Equal(t, Queued, instance.Deliver(ctx, []byte(wireLine(0))))
	assert.Less(t, time.Since(start), global.DefaultLockTimeout, "a single delivery must not wait for the link")

	const callers = 8
	outcomes := make([]Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = instance.Deliver(ctx, []byte(wireLine(i+1)))
		}(i)
	}
	wg.Wait()

	for i, outcome := range outcomes {
		assert.Equal(t, Queued, outcome, "caller %d", i)
	}
	assert.Equal(t, uint64(callers+1), instance.Metrics.Queued.Load())
	assert.Zero(t, instance.Metrics.Dropped.Load())
	assert.Zero(t, instance.Metrics.LockTimeouts.Load())
	assert.Zero(t, transport.opens)
}

// Blocks every Resolve until released
type gatedResolver struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (resolver *gatedResolver) Resolve(ctx context.Context) (string, int, error) {
	resolver.once.Do(func() { close(resolver.entered) })
	<-resolver.release
	return "192.0.2.10", 514, nil
}

func TestSlowResolutionDoesNotHoldLock(t *testing.T) {
	transport := &recordingTransport{failAfter: -1}
	link := &switchableLink{}
	link.up.Store(true)
	resolver := &gatedResolver{entered: make(chan struct{}), release: make(chan struct{})}
	conn := connection.New([]string{"Test"}, connection.Config{
		Transport: transport,
		Resolver:  resolver,
		Readiness: link,
		Registry:  connection.NewRegistry(),
	})
	queue := offline.New([]string{"Test"}, afero.NewMemMapFs(), queuePath, 1<<16)
	instance := New([]string{"Test"}, conn, queue, 50*time.Millisecond, 0, func() string { return "device01" })
	ctx := context.Background()

	first := make(chan Outcome)
	go func() {
		first <- instance.Deliver(ctx, []byte(wireLine(0)))
	}()
	<-resolver.entered

	// The first caller is still resolving; others queue instead of waiting on it
	assert.Equal(t, Queued, instance.Deliver(ctx, []byte(wireLine(1))))
	assert.NoError(t, instance.WithLock(ctx, func() {}))

	close(resolver.release)
	assert.Equal(t, Sent, <-first)
	assert.Zero(t, instance.Metrics.Dropped.Load())
	replayed := strings.Replace(wireLine(1), "@HOST@", "device01", 1)
	assert.Equal(t, []string{replayed, wireLine(0)}, transport.datagrams(), "backlog replays before the new line")
}

func TestExplicitDrain(t *testing.T) {
	h := newHarness(true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Equal(t, Queued, h.instance.Deliver(ctx, []byte(wireLine(i))))
	}

	_, err := h.instance.Drain(ctx)
	require.Error(t, err, "no connection while the link is down")

	h.link.up.Store(true)
	replayed, err := h.instance.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, replayed)
	assert.False(t, h.instance.Queue().DrainPending())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "sent", Sent.String())
	assert.Equal(t, "queued", Queued.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.True(t, errors.Is(fmt.Errorf("x: %w", ErrLockTimeout), ErrLockTimeout))
}
