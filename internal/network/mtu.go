package network

import (
	"fmt"
	"net"
	"strings"
)

// Worst case IP plus UDP header bytes for a destination address
func getTransportOverhead(destinationIP string) (overhead int, err error) {
	const ip4Overhead int = 60
	const ip6Overhead int = 80
	const udpOverhead int = 8

	ip := net.ParseIP(strings.Trim(destinationIP, "[]"))
	switch {
	case ip == nil:
		err = fmt.Errorf("unsupported destination address '%v'", destinationIP)
	case ip.To4() != nil:
		overhead = ip4Overhead + udpOverhead
	default:
		overhead = ip6Overhead + udpOverhead
	}
	return
}

// Determines the largest UDP payload that reaches destination (host or host:port, IP literal) unfragmented
func FindSendingMaxUDPPayload(destination string) (maxPayloadSize int, err error) {
	destinationIP := destination
	host, _, splitErr := net.SplitHostPort(destination)
	if splitErr == nil {
		destinationIP = host
	}

	// Default to ethernet standard MTU if no other MTU is found
	const defaultMTU int = 1500

	overhead, err := getTransportOverhead(destinationIP)
	if err != nil {
		err = fmt.Errorf("failed to retrieve transport layer overhead: %w", err)
		return
	}

	ip := net.ParseIP(strings.Trim(destinationIP, "[]"))
	if ip.IsLoopback() {
		var loopback *net.Interface
		loopback, err = getInterfaceForDestination(destinationIP)
		if err != nil {
			return
		}
		maxPayloadSize = loopback.MTU - overhead
		return
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	// Identical MTU on every non-loopback interface avoids a route lookup
	var commonMTU int
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if commonMTU == 0 {
			commonMTU = iface.MTU
		} else if commonMTU != iface.MTU {
			commonMTU = 0
			break
		}
	}

	mtu := commonMTU
	if mtu == 0 {
		var iface *net.Interface
		iface, err = getInterfaceForDestination(destinationIP)
		if err != nil {
			return
		}
		mtu = iface.MTU
	}

	if mtu <= 0 {
		mtu = defaultMTU
	}
	maxPayloadSize = mtu - overhead
	return
}

// Lowers bound to the path payload limit when one can be determined. Unknown paths keep bound.
func CapToPath(bound int, destination string) (capped int) {
	capped = bound
	maxPayload, err := FindSendingMaxUDPPayload(destination)
	if err != nil || maxPayload <= 0 {
		return
	}
	if maxPayload < capped {
		capped = maxPayload
	}
	return
}
