package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errInjected = errors.New("injected failure")

type fakeEndpoint struct {
	mutex      sync.Mutex
	port       int
	sent       [][]byte
	failWrites bool
	shortWrite bool
	closed     bool
}

func (endpoint *fakeEndpoint) Write(datagram []byte) (n int, err error) {
	endpoint.mutex.Lock()
	defer endpoint.mutex.Unlock()
	if endpoint.closed {
		err = errors.New("use of closed endpoint")
		return
	}
	if endpoint.failWrites {
		err = errInjected
		return
	}
	if endpoint.shortWrite {
		n = len(datagram) / 2
		return
	}
	endpoint.sent = append(endpoint.sent, append([]byte(nil), datagram...))
	n = len(datagram)
	return
}

func (endpoint *fakeEndpoint) Close() (err error) {
	endpoint.mutex.Lock()
	defer endpoint.mutex.Unlock()
	endpoint.closed = true
	return
}

func (endpoint *fakeEndpoint) LocalPort() int {
	return endpoint.port
}

func (endpoint *fakeEndpoint) isClosed() bool {
	endpoint.mutex.Lock()
	defer endpoint.mutex.Unlock()
	return endpoint.closed
}

type fakeTransport struct {
	mutex    sync.Mutex
	opened   []*fakeEndpoint
	failOpen bool
	attempts int
	port     int // local port handed to endpoints when the caller asks for 0
	lastHost string
	lastPort int
}

func (transport *fakeTransport) Open(ctx context.Context, localPort int, host string, port int) (endpoint Endpoint, err error) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.attempts++
	if transport.failOpen {
		err = errInjected
		return
	}
	if localPort == 0 {
		localPort = transport.port
	}
	fake := &fakeEndpoint{port: localPort}
	transport.opened = append(transport.opened, fake)
	transport.lastHost = host
	transport.lastPort = port
	endpoint = fake
	return
}

func (transport *fakeTransport) last() *fakeEndpoint {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	if len(transport.opened) == 0 {
		return nil
	}
	return transport.opened[len(transport.opened)-1]
}

func (transport *fakeTransport) attemptCount() int {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	return transport.attempts
}

func (transport *fakeTransport) setFailOpen(fail bool) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.failOpen = fail
}

func (transport *fakeTransport) openCount() int {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	return len(transport.opened)
}

type fakeReadiness struct {
	running atomic.Bool
	link    atomic.Bool
}

func newReadiness(running, link bool) *fakeReadiness {
	readiness := &fakeReadiness{}
	readiness.running.Store(running)
	readiness.link.Store(link)
	return readiness
}

func (readiness *fakeReadiness) SchedulerRunning() bool { return readiness.running.Load() }
func (readiness *fakeReadiness) LinkUp() bool           { return readiness.link.Load() }

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context) (host string, port int, err error) {
	err = errInjected
	return
}

// Counts Resolve calls and fails while failing is set
type countingResolver struct {
	calls   atomic.Int32
	failing atomic.Bool
}

func (resolver *countingResolver) Resolve(ctx context.Context) (host string, port int, err error) {
	resolver.calls.Add(1)
	if resolver.failing.Load() {
		err = errInjected
		return
	}
	host, port = "192.0.2.20", 5514
	return
}
