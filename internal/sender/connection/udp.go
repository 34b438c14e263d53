package connection

import (
	"context"
	"devsyslog/internal/network"
	"net"
)

// Transport over connected UDP sockets with address and port reuse
type UDPTransport struct{}

type udpEndpoint struct {
	conn *net.UDPConn
}

func (UDPTransport) Open(ctx context.Context, localPort int, host string, port int) (endpoint Endpoint, err error) {
	conn, err := network.DialUDP(ctx, localPort, host, port)
	if err != nil {
		return
	}
	endpoint = &udpEndpoint{conn: conn}
	return
}

func (endpoint *udpEndpoint) Write(datagram []byte) (n int, err error) {
	n, err = endpoint.conn.Write(datagram)
	return
}

func (endpoint *udpEndpoint) Close() (err error) {
	err = endpoint.conn.Close()
	return
}

func (endpoint *udpEndpoint) LocalPort() (port int) {
	addr, ok := endpoint.conn.LocalAddr().(*net.UDPAddr)
	if ok {
		port = addr.Port
	}
	return
}
