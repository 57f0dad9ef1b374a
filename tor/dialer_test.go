package tor

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	conn net.Conn
	err  error
}

func (f *fakeDialer) Dial(network, addr string) (net.Conn, error) {
	return f.conn, f.err
}

func TestIsOnionAddress(t *testing.T) {
	require.True(t, IsOnionAddress("abc123xyz.onion:9911"))
	require.True(t, IsOnionAddress("ABC123XYZ.ONION:9911"))
	require.False(t, IsOnionAddress("198.51.100.1:9911"))
}

func TestPolicyDialerPrefersOnion(t *testing.T) {
	onionConn, tcpConn := &net.TCPConn{}, &net.TCPConn{}

	p := &PolicyDialer{
		Onion:       &fakeDialer{conn: onionConn},
		TCP:         &fakeDialer{conn: tcpConn},
		PreferOnion: true,
	}

	conn, err := p.Dial("tcp", "x.onion:9911")
	require.NoError(t, err)
	require.Same(t, onionConn, conn)
}

func TestPolicyDialerFallsBackToTCP(t *testing.T) {
	tcpConn := &net.TCPConn{}

	p := &PolicyDialer{
		Onion:       &fakeDialer{err: errors.New("bootstrap failed")},
		TCP:         &fakeDialer{conn: tcpConn},
		PreferOnion: true,
	}

	conn, err := p.Dial("tcp", "x.onion:9911")
	require.NoError(t, err)
	require.Same(t, tcpConn, conn)
}

func TestPolicyDialerNoDialerConfigured(t *testing.T) {
	p := &PolicyDialer{}

	_, err := p.Dial("tcp", "x.onion:9911")
	require.Equal(t, errNoDialerConfigured, err)
}
