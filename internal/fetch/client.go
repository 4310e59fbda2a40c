package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrForbiddenAddress is returned when a download would connect to a
// loopback, private, link-local or otherwise non-public address.
var ErrForbiddenAddress = errors.New("address is not publicly routable")

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"), // NAT64 can reach any IPv4 host
}

// NewClient returns the HTTP client used for image downloads. Unless
// allowPrivate is set, every connection, redirects included, must go to a
// public address and environment proxies are ignored.
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	if !allowPrivate {
		dialer.Control = rejectNonPublic
		transport.Proxy = nil
	}

	transport.DialContext = dialer.DialContext

	return &http.Client{Timeout: timeout, Transport: transport}
}

// rejectNonPublic runs after DNS resolution, so address is always an IP.
func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}

	if !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ip)
	}

	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()

	if !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return false
	}

	for _, p := range reservedPrefixes {
		if p.Contains(ip) {
			return false
		}
	}

	return true
}
