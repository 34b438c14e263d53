// Lifecycle of the outbound collector endpoint: lazy connect, zombie eviction, teardown on send failure
package connection

import (
	"context"
	"devsyslog/internal/atomics"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"fmt"
	"time"
)

const defaultLinkPollInterval = 50 * time.Millisecond

func New(namespace []string, cfg Config) (manager *Manager) {
	manager = &Manager{
		Namespace:        append(namespace, global.NSConnection),
		transport:        cfg.Transport,
		resolver:         cfg.Resolver,
		readiness:        cfg.Readiness,
		registry:         cfg.Registry,
		localPort:        cfg.LocalPort,
		linkWaitTimeout:  cfg.LinkWaitTimeout,
		linkPollInterval: cfg.LinkPollInterval,
		retryBackoff:     cfg.RetryBackoff,
		maxRetryBackoff:  cfg.MaxRetryBackoff,
	}
	if manager.registry == nil {
		manager.registry = processRegistry
	}
	if manager.resolver == nil {
		manager.resolver = WellKnown()
	}
	if manager.linkPollInterval <= 0 {
		manager.linkPollInterval = defaultLinkPollInterval
	}
	if manager.maxRetryBackoff < manager.retryBackoff {
		manager.maxRetryBackoff = manager.retryBackoff
	}
	return
}

func (manager *Manager) State() State {
	return State(manager.state.Load())
}

// Collector address of the current (or last) connection
func (manager *Manager) Remote() (host string, port int) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	host, port = manager.host, manager.port
	return
}

func (manager *Manager) MaxBytesSent() uint64 {
	return manager.Metrics.MaxBytesSent.Load()
}

// Local port an open endpoint is bound to, and whether the registry still lists this manager there
func (manager *Manager) LocalBinding() (port int, owned bool) {
	manager.mutex.Lock()
	port = manager.boundTo
	manager.mutex.Unlock()

	if port == 0 {
		return
	}
	owned = manager.registry.Holder(port) == manager
	return
}

// Returns true when an endpoint is open, resolving and connecting first if needed.
// Never waits for the link. Failures are reported to the diagnostic logger only.
func (manager *Manager) EnsureConnected(ctx context.Context) (connected bool) {
	if manager.State() == Connected && manager.hasEndpoint() {
		connected = true
		return
	}
	if !manager.Prepare(ctx) {
		return
	}
	connected = manager.Connect(ctx)
	return
}

// Checks readiness without waiting and resolves the collector when no address is cached.
// Resolution can block for the resolver's timeout, so callers run this outside the transport lock.
// Concurrent callers do not queue behind an in-flight resolution; they get false.
func (manager *Manager) Prepare(ctx context.Context) (ready bool) {
	if manager.State() == Connected && manager.hasEndpoint() {
		ready = true
		return
	}

	err := manager.prepare(ctx)
	if err != nil {
		manager.attemptFailed(ctx, err)
		return
	}
	ready = true
	return
}

func (manager *Manager) prepare(ctx context.Context) (err error) {
	err = manager.checkReadiness()
	if err != nil {
		return
	}
	if _, _, ok := manager.cachedRemote(); ok {
		return
	}
	err = manager.checkBackoff(time.Now())
	if err != nil {
		return
	}

	if !manager.resolveMutex.TryLock() {
		err = ErrResolving
		return
	}
	defer manager.resolveMutex.Unlock()

	// Another caller may have finished resolving while this one checked the cache
	if _, _, ok := manager.cachedRemote(); ok {
		return
	}

	host, port, err := manager.resolver.Resolve(ctx)
	if err != nil {
		manager.backOff(time.Now())
		err = fmt.Errorf("failed to resolve collector: %w", err)
		return
	}

	manager.mutex.Lock()
	manager.cachedHost = host
	manager.cachedPort = port
	manager.cached = true
	manager.mutex.Unlock()
	return
}

// Opens an endpoint to the cached collector address. Does no resolution and no waiting,
// so it is safe to call with the transport lock held.
func (manager *Manager) Connect(ctx context.Context) (connected bool) {
	if manager.State() == Connected && manager.hasEndpoint() {
		connected = true
		return
	}

	err := manager.connect(ctx)
	if err != nil {
		manager.attemptFailed(ctx, err)
		return
	}

	manager.Metrics.Connects.Add(1)
	connected = true
	return
}

func (manager *Manager) attemptFailed(ctx context.Context, err error) {
	manager.state.Store(int32(Disconnected))
	manager.Metrics.ConnectFails.Add(1)
	ctx = logctx.AppendCtxTag(ctx, global.NSConnection)
	logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
		"connection attempt failed: %v\n", err)
}

func (manager *Manager) connect(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSConnection)

	err = manager.checkReadiness()
	if err != nil {
		return
	}
	err = manager.checkBackoff(time.Now())
	if err != nil {
		return
	}
	host, port, ok := manager.cachedRemote()
	if !ok {
		err = ErrNotResolved
		return
	}

	manager.state.Store(int32(Connecting))

	if manager.registry.evict(manager.localPort, manager) {
		manager.Metrics.Evictions.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"closed stale endpoint bound to local port %d\n", manager.localPort)
	}

	endpoint, err := manager.transport.Open(ctx, manager.localPort, host, port)
	if err != nil {
		// Resolve again on the next attempt in case the collector moved
		manager.mutex.Lock()
		manager.cached = false
		manager.mutex.Unlock()
		manager.backOff(time.Now())
		err = fmt.Errorf("failed to open endpoint to %s:%d: %w", host, port, err)
		return
	}

	boundTo := endpoint.LocalPort()
	if boundTo != manager.localPort && manager.registry.evict(boundTo, manager) {
		manager.Metrics.Evictions.Add(1)
	}

	manager.mutex.Lock()
	previous := manager.endpoint
	manager.endpoint = endpoint
	manager.boundTo = boundTo
	manager.host = host
	manager.port = port
	manager.retryAt = time.Time{}
	manager.retryDelay = 0
	manager.mutex.Unlock()

	if previous != nil {
		previous.Close()
	}
	manager.registry.register(boundTo, manager)
	manager.state.Store(int32(Connected))

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"connected to collector %s:%d from local port %d\n", host, port, boundTo)
	return
}

// Scheduler and link state at this instant
func (manager *Manager) checkReadiness() (err error) {
	if manager.readiness == nil {
		return
	}
	if !manager.readiness.SchedulerRunning() {
		err = ErrSchedulerStopped
		return
	}
	if !manager.readiness.LinkUp() {
		err = ErrLinkDown
	}
	return
}

func (manager *Manager) cachedRemote() (host string, port int, ok bool) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	host, port, ok = manager.cachedHost, manager.cachedPort, manager.cached
	return
}

func (manager *Manager) checkBackoff(now time.Time) (err error) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if now.Before(manager.retryAt) {
		err = fmt.Errorf("%w: next attempt in %v", ErrBackoff, manager.retryAt.Sub(now).Round(time.Millisecond))
	}
	return
}

// Doubles the retry delay up to the configured ceiling
func (manager *Manager) backOff(now time.Time) {
	if manager.retryBackoff <= 0 {
		return
	}
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if manager.retryDelay == 0 {
		manager.retryDelay = manager.retryBackoff
	} else {
		manager.retryDelay = min(manager.retryDelay*2, manager.maxRetryBackoff)
	}
	manager.retryAt = now.Add(manager.retryDelay)
}

// Polls link state until it is up or the wait bound passes.
// Blocks, so never call it with the transport lock held.
func (manager *Manager) WaitForLink(ctx context.Context) (err error) {
	if manager.readiness == nil || manager.readiness.LinkUp() {
		return
	}
	if manager.linkWaitTimeout <= 0 {
		err = ErrLinkDown
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, manager.linkWaitTimeout)
	defer cancel()

	ticker := time.NewTicker(manager.linkPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			err = ErrLinkDown
			return
		case <-ticker.C:
			if manager.readiness.LinkUp() {
				return
			}
		}
	}
}

func (manager *Manager) hasEndpoint() (present bool) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	present = manager.endpoint != nil
	return
}

// Writes one datagram. Any error or short write tears the connection down.
func (manager *Manager) Send(datagram []byte) (err error) {
	manager.mutex.Lock()
	endpoint := manager.endpoint
	manager.mutex.Unlock()

	if endpoint == nil {
		err = ErrNotConnected
		return
	}

	n, err := endpoint.Write(datagram)
	if err == nil && n < len(datagram) {
		err = fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(datagram))
	}
	if err != nil {
		manager.Metrics.SendFails.Add(1)
		manager.Disconnect()
		err = fmt.Errorf("failed to send datagram: %w", err)
		return
	}

	manager.Metrics.TotalDatagrams.Add(1)
	manager.Metrics.SumBytes.Add(uint64(n))
	atomics.StoreMax(&manager.Metrics.MaxBytesSent, uint64(n))
	return
}

// Closes the endpoint and marks the manager disconnected. Safe to call repeatedly.
func (manager *Manager) Disconnect() {
	manager.dropEndpoint()
	manager.state.Store(int32(Disconnected))
}

// Releases the endpoint. Reports whether one was open.
func (manager *Manager) dropEndpoint() (closed bool) {
	manager.mutex.Lock()
	endpoint := manager.endpoint
	boundTo := manager.boundTo
	manager.endpoint = nil
	manager.boundTo = 0
	manager.mutex.Unlock()

	if endpoint == nil {
		return
	}

	manager.state.Store(int32(Disconnected))
	manager.registry.release(boundTo, manager)
	endpoint.Close()
	closed = true
	return
}
