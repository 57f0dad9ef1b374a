package tor

import (
	"net"
	"strings"
	"time"

	"github.com/btcsuite/go-socks/socks"
	"github.com/go-errors/errors"
)

// errNoDialerConfigured is returned when neither an onion nor a TCP
// dialer is available to satisfy a connection request.
var errNoDialerConfigured = errors.New("tor: no dialer configured")

// connectTimeout bounds a single dial attempt, onion or TCP.
const connectTimeout = 30 * time.Second

// Dialer is the byte-stream factory C4 uses to reach a tower, hiding
// whether the connection went over Tor or clearnet.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// TCPDialer is the plain TCP tunnel mode: used when an operator-managed
// tunnel to the tower already exists, or as the onion mode's fallback.
type TCPDialer struct{}

// Dial implements Dialer.
func (TCPDialer) Dial(network, addr string) (net.Conn, error) {
	return net.DialTimeout(network, addr, connectTimeout)
}

// SOCKSDialer routes connections through a local Tor daemon's SOCKS5
// proxy, the only way to reach an onion-service address.
type SOCKSDialer struct {
	proxy *socks.Proxy
}

// NewSOCKSDialer returns a SOCKSDialer that connects through the SOCKS5
// proxy listening at proxyAddr (typically discovered via
// Controller.SOCKSAddr).
func NewSOCKSDialer(proxyAddr string) *SOCKSDialer {
	return &SOCKSDialer{
		proxy: &socks.Proxy{
			Addr: proxyAddr,
		},
	}
}

// Dial implements Dialer.
func (d *SOCKSDialer) Dial(network, addr string) (net.Conn, error) {
	return d.proxy.Dial(network, addr)
}

// IsOnionAddress reports whether addr's host component is a .onion
// address.
func IsOnionAddress(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return strings.HasSuffix(strings.ToLower(host), ".onion")
}

// PolicyDialer implements the selection policy from §4.7: prefer the
// onion dialer when configured, falling back to a plain TCP dial whenever
// the onion dial returns an error. Without a TCP dialer, the onion error
// is not returned; the caller gets errNoDialerConfigured.
type PolicyDialer struct {
	Onion       Dialer
	TCP         Dialer
	PreferOnion bool
}

// Dial implements Dialer, applying the configured selection policy.
func (p *PolicyDialer) Dial(network, addr string) (net.Conn, error) {
	if p.PreferOnion && p.Onion != nil {
		conn, err := p.Onion.Dial(network, addr)
		if err == nil {
			return conn, nil
		}
		log.Warnf("onion dial to %s failed, falling back to tcp: %v",
			addr, err)
	}

	if p.TCP == nil {
		return nil, errNoDialerConfigured
	}

	return p.TCP.Dial(network, addr)
}
