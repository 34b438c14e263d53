package integration

import (
	"context"
	"devsyslog/internal/network"
	"devsyslog/pkg/protocol"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testPlatform struct {
	link atomic.Bool
}

func (platform *testPlatform) SchedulerRunning() bool { return true }
func (platform *testPlatform) LinkUp() bool           { return platform.link.Load() }
func (platform *testPlatform) TaskName() string       { return "ctl" }
func (platform *testPlatform) CoreID() int            { return 1 }

// Loopback UDP collector recording every datagram it receives
type collector struct {
	conn *net.UDPConn

	mutex     sync.Mutex
	datagrams [][]byte
}

func startCollector(t *testing.T) (c *collector) {
	t.Helper()
	conn, err := network.ListenReusableUDP(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	c = &collector{conn: conn}
	go c.receive()
	t.Cleanup(func() { conn.Close() })
	return
}

func (c *collector) receive() {
	buffer := make([]byte, 65535)
	for {
		n, _, err := c.conn.ReadFromUDP(buffer)
		if err != nil {
			return
		}
		c.mutex.Lock()
		c.datagrams = append(c.datagrams, append([]byte(nil), buffer[:n]...))
		c.mutex.Unlock()
	}
}

func (c *collector) port() int {
	return c.conn.LocalAddr().(*net.UDPAddr).Port
}

// Waits for at least count datagrams and returns them parsed
func (c *collector) waitFor(t *testing.T, count int) (messages []protocol.Message) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.mutex.Lock()
		received := append([][]byte(nil), c.datagrams...)
		c.mutex.Unlock()

		if len(received) >= count {
			for _, datagram := range received {
				msg, err := protocol.Parse(datagram)
				require.NoError(t, err, "datagram %q", datagram)
				messages = append(messages, msg)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d datagrams, received %d", count, len(received))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
