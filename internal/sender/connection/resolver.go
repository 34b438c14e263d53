package connection

import (
	"context"
	"devsyslog/internal/global"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Fixed collector address
type Static struct {
	Host string
	Port int
}

func (static Static) Resolve(ctx context.Context) (host string, port int, err error) {
	if static.Host == "" {
		err = ErrNoCollector
		return
	}
	host = static.Host
	port = static.Port
	if port <= 0 {
		port = global.DefaultCollectorPort
	}
	return
}

// Well-known collector used when nothing else is configured or discovered
func WellKnown() (resolver Static) {
	resolver = Static{Host: global.DefaultCollectorHost, Port: global.DefaultCollectorPort}
	return
}

// Tries each resolver in order and returns the first answer
type Chain []Resolver

func (chain Chain) Resolve(ctx context.Context) (host string, port int, err error) {
	var errs []error
	for _, resolver := range chain {
		host, port, err = resolver.Resolve(ctx)
		if err == nil {
			return
		}
		errs = append(errs, err)
	}
	err = errors.Join(errs...)
	if err == nil {
		err = ErrNoCollector
	}
	return
}

// Browser for mDNS service entries
type BrowseFunc func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error

func zeroconfBrowse(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
}

// Finds the collector by browsing for a DNS-SD service
type MDNS struct {
	Service   string
	Domain    string
	Interface string // empty browses on all interfaces
	Timeout   time.Duration
	Browse    BrowseFunc // nil uses zeroconf.Browse
}

func (mdns MDNS) Resolve(ctx context.Context) (host string, port int, err error) {
	service := mdns.Service
	if service == "" {
		service = global.DefaultMDNSService
	}
	domain := mdns.Domain
	if domain == "" {
		domain = global.DefaultMDNSDomain
	}
	timeout := mdns.Timeout
	if timeout <= 0 {
		timeout = global.DefaultDiscoverTimeout
	}
	browse := mdns.Browse
	if browse == nil {
		browse = zeroconfBrowse
	}

	var opts []zeroconf.ClientOption
	if mdns.Interface != "" {
		iface, ifaceErr := net.InterfaceByName(mdns.Interface)
		if ifaceErr == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	browseErr := make(chan error, 1)
	go func() {
		browseErr <- browse(browseCtx, service, domain, entries, removed, opts...)
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				err = fmt.Errorf("%w: %s browse ended without results", ErrNoCollector, service)
				return
			}
			address := entryAddress(entry)
			if address == "" || entry.Port <= 0 {
				continue
			}
			host = address
			port = entry.Port
			return
		case <-removed:
		case err = <-browseErr:
			if err == nil {
				err = fmt.Errorf("%w: %s browse ended without results", ErrNoCollector, service)
				return
			}
			err = fmt.Errorf("failed to browse for %s: %w", service, err)
			return
		case <-browseCtx.Done():
			err = fmt.Errorf("%w: no %s announcement within %s", ErrNoCollector, service, timeout)
			return
		}
	}
}

// Prefers IPv4, then IPv6, then the advertised host name
func entryAddress(entry *zeroconf.ServiceEntry) (address string) {
	if entry == nil {
		return
	}
	if len(entry.AddrIPv4) > 0 {
		address = entry.AddrIPv4[0].String()
		return
	}
	if len(entry.AddrIPv6) > 0 {
		address = entry.AddrIPv6[0].String()
		return
	}
	address = entry.HostName
	return
}
