package output

import (
	"context"
	"devsyslog/internal/sender/connection"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var errInjected = errors.New("injected failure")

// Records datagrams; fails every write after failAfter successes (negative = never)
type recordingTransport struct {
	mutex     sync.Mutex
	sent      []string
	failAfter int
	opens     int
}

type recordingEndpoint struct {
	transport *recordingTransport
}

func (transport *recordingTransport) Open(ctx context.Context, localPort int, host string, port int) (connection.Endpoint, error) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.opens++
	return &recordingEndpoint{transport: transport}, nil
}

func (endpoint *recordingEndpoint) Write(datagram []byte) (int, error) {
	transport := endpoint.transport
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	if transport.failAfter >= 0 && len(transport.sent) >= transport.failAfter {
		return 0, errInjected
	}
	transport.sent = append(transport.sent, string(datagram))
	return len(datagram), nil
}

func (endpoint *recordingEndpoint) Close() error { return nil }
func (endpoint *recordingEndpoint) LocalPort() int { return 0 }

func (transport *recordingTransport) setFailAfter(n int) {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	transport.failAfter = n
}

func (transport *recordingTransport) datagrams() []string {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	return append([]string(nil), transport.sent...)
}

type switchableLink struct {
	up atomic.Bool
}

func (link *switchableLink) SchedulerRunning() bool { return true }
func (link *switchableLink) LinkUp() bool           { return link.up.Load() }

func newTestConnection(transport connection.Transport, link *switchableLink) *connection.Manager {
	return connection.New([]string{"Test"}, connection.Config{
		Transport: transport,
		Resolver:  connection.Static{Host: "192.0.2.10", Port: 514},
		Readiness: link,
		Registry:  connection.NewRegistry(),
		// Fail fast while the link is down
		LinkWaitTimeout: time.Millisecond,
	})
}
