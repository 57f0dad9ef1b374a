package brontide

import (
	"net"

	"github.com/btcsuite/btcd/btcec"
)

// Listener wraps a net.Listener, running the brontide responder handshake
// on every accepted connection before handing it back to the caller. This
// bridge never listens for inbound tower connections in production — it
// only dials out — but the listener is kept because the handshake state
// machine is symmetric. No test uses Listener itself; the responder path
// it runs (NewInboundConn) is exercised by the wtclient tests.
type Listener struct {
	net.Listener

	localPriv *btcec.PrivateKey
}

// NewListener wraps an existing net.Listener.
func NewListener(localPriv *btcec.PrivateKey, l net.Listener) *Listener {
	return &Listener{
		Listener:  l,
		localPriv: localPriv,
	}
}

// Accept blocks until a new inbound connection completes the Noise_XK
// responder handshake, then returns it as a *Conn.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	return NewInboundConn(conn, l.localPriv)
}
