package network

import (
	"fmt"
	"net"
	"strings"
)

// Determines the interface used to reach a given destination address
func getInterfaceForDestination(destination string) (iface *net.Interface, err error) {
	rawIP := strings.Trim(destination, "[]")

	destAddr := net.ParseIP(rawIP)
	if destAddr == nil {
		err = fmt.Errorf("invalid destination address: %s", destination)
		return
	}

	// Connecting a UDP socket sends nothing but makes the kernel pick the source address
	conn, dialErr := net.Dial("udp", net.JoinHostPort(destAddr.String(), "9"))
	if dialErr != nil {
		err = fmt.Errorf("failed to find interface for destination %s: %w", rawIP, dialErr)
		return
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	iface, err = getInterfaceForAddress(localAddr.IP)
	return
}

// Retrieves the network interface holding a specific address
func getInterfaceForAddress(address net.IP) (iface *net.Interface, err error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for i := range ifaces {
		addrs, addrErr := ifaces[i].Addrs()
		if addrErr != nil {
			continue
		}

		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if ok && ipNet.IP.Equal(address) {
				iface = &ifaces[i]
				return
			}
		}
	}

	err = fmt.Errorf("no matching interface found for address %v", address)
	return
}
