package network

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Sets SO_REUSEADDR and SO_REUSEPORT so a fresh endpoint can bind a local port
// still held by a stale socket
func reuseControl(network, address string, c syscall.RawConn) (err error) {
	// Using x/sys/unix package for more up-to-date syscall numbers
	ctrlErr := c.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if err != nil {
			return
		}
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err == nil {
		err = ctrlErr
	}
	return
}

// Opens a connected UDP socket to host:port from the given local port (0 = ephemeral).
// Writes never wait: the write deadline is cleared and UDP sends do not block on the peer.
func DialUDP(ctx context.Context, localPort int, host string, port int) (conn *net.UDPConn, err error) {
	dialer := net.Dialer{
		LocalAddr: &net.UDPAddr{Port: localPort},
		Control:   reuseControl,
	}

	remote := net.JoinHostPort(host, strconv.Itoa(port))
	rawConn, err := dialer.DialContext(ctx, "udp", remote)
	if err != nil {
		err = fmt.Errorf("failed to dial %s: %w", remote, err)
		return
	}

	conn, ok := rawConn.(*net.UDPConn)
	if !ok {
		rawConn.Close()
		err = fmt.Errorf("dial %s returned %T, expected UDP connection", remote, rawConn)
		return
	}

	err = conn.SetWriteDeadline(time.Time{})
	if err != nil {
		conn.Close()
		err = fmt.Errorf("failed to configure endpoint: %w", err)
		return
	}
	return
}

// Creates a UDP listener that tolerates other sockets on the same port
func ListenReusableUDP(ctx context.Context, address string) (conn *net.UDPConn, err error) {
	cfg := net.ListenConfig{Control: reuseControl}

	pc, err := cfg.ListenPacket(ctx, "udp", address)
	if err != nil {
		err = fmt.Errorf("failed to listen on reused address %s: %w", address, err)
		return
	}
	conn = pc.(*net.UDPConn)
	return
}
