// Package brontide implements the BOLT 8 transport: a Noise_XK handshake
// parameterised on secp256k1 rather than Curve25519, plus the per-message
// AEAD framing and key rotation that rides on top of it. No off-the-shelf
// Noise library is reused — see the handshake design note in §9 of the
// bridge specification for why that would silently fail to interoperate
// with an LND tower.
package brontide

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/breez/lnwatchtower/buffer"
	"github.com/btcsuite/btcd/btcec"
	"github.com/go-errors/errors"
)

// handshakeTimeout bounds how long the three-act handshake is allowed to
// take before the dial or accept attempt is abandoned.
const handshakeTimeout = 10 * time.Second

// ErrMaxMessageLengthExceededLocal is a local guard against callers
// attempting to Write a frame whose payload cannot be framed under the
// protocol's 65535-byte length prefix.
var ErrMaxMessageLengthExceededLocal = errors.New("message exceeds " +
	"maximum payload size for brontide framing")

// Conn implements net.Conn, transparently encrypting/decrypting every
// Read/Write using the keys established by the embedded Noise_XK
// handshake. Once constructed (via Dial or a Listener's Accept), it is
// indistinguishable from a plain net.Conn to its caller.
type Conn struct {
	net.Conn

	noise *handshakeState

	readBuf  buffer.Read
	readBufPos int
	readBufLen int

	remotePub *btcec.PublicKey

	sendMu sync.Mutex
	recvMu sync.Mutex

	send cipherState
	recv cipherState
}

// Dial opens a TCP (or otherwise dial-func provided) connection to the
// remote peer identified by netAddr, then performs the initiator side of
// the Noise_XK handshake before returning. The dialer argument allows the
// underlying connection to be established over Tor (SOCKS5) just as
// easily as clearnet TCP — the handshake logic is identical either way.
func Dial(localPriv *btcec.PrivateKey, addr string, remotePub *btcec.PublicKey,
	dialer func(network, address string) (net.Conn, error)) (*Conn, error) {

	conn, err := dialer("tcp", addr)
	if err != nil {
		return nil, err
	}

	b := &Conn{
		Conn:      conn,
		noise:     newHandshakeState(true, remotePub, localPriv),
		remotePub: remotePub,
	}

	if err := conn.SetDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		conn.Close()
		return nil, err
	}

	if err := b.initiatorHandshake(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}

	return b, nil
}

// NewInboundConn wraps an already-accepted net.Conn and runs the responder
// side of the handshake. It is kept alongside the initiator path because
// the handshake state machine is symmetric and this module's own tests
// exercise both sides in-process (no real tower is reachable in tests).
func NewInboundConn(conn net.Conn, localPriv *btcec.PrivateKey) (*Conn, error) {
	b := &Conn{
		Conn: conn,
		// The responder does not know the initiator's static key in
		// advance in general Noise_XK deployments, but this bridge's
		// handshake implementation only ever plays initiator against
		// a real tower; NewInboundConn exists purely so tests can
		// stand up a responder. The responder's own static key
		// doubles as the "remote" key argument since
		// newHandshakeState requires one to seed the transcript hash
		// identically on both sides.
		noise: newHandshakeState(false, localPriv.PubKey(), localPriv),
	}

	if err := conn.SetDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		conn.Close()
		return nil, err
	}

	if err := b.responderHandshake(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}

	return b, nil
}

func (c *Conn) initiatorHandshake() error {
	actOne, err := c.noise.GenActOne()
	if err != nil {
		return err
	}
	if _, err := c.Conn.Write(actOne[:]); err != nil {
		return err
	}

	var actTwo [act2Size]byte
	if err := readFull(c.Conn, actTwo[:]); err != nil {
		return err
	}
	if err := c.noise.RecvActTwo(actTwo); err != nil {
		return err
	}

	actThree, err := c.noise.GenActThree()
	if err != nil {
		return err
	}
	if _, err := c.Conn.Write(actThree[:]); err != nil {
		return err
	}

	c.send, c.recv = c.noise.split()
	c.remotePub = c.noise.remoteStatic

	log.Debugf("Completed Noise_XK handshake with %x",
		c.remotePub.SerializeCompressed())

	return nil
}

func (c *Conn) responderHandshake() error {
	var actOne [act1Size]byte
	if err := readFull(c.Conn, actOne[:]); err != nil {
		return err
	}
	if err := c.noise.RecvActOne(actOne); err != nil {
		return err
	}

	actTwo, err := c.noise.GenActTwo()
	if err != nil {
		return err
	}
	if _, err := c.Conn.Write(actTwo[:]); err != nil {
		return err
	}

	var actThree [act3Size]byte
	if err := readFull(c.Conn, actThree[:]); err != nil {
		return err
	}
	if err := c.noise.RecvActThree(actThree); err != nil {
		return err
	}

	c.send, c.recv = c.noise.split()
	c.remotePub = c.noise.remoteStatic

	return nil
}

// RemotePub returns the remote party's static public key, authenticated
// by the completed handshake.
func (c *Conn) RemotePub() *btcec.PublicKey {
	return c.remotePub
}

// Write encrypts b as a single framed message — an encrypted 2-byte
// length prefix followed by the encrypted payload — and writes it to the
// underlying connection. Per §4.4, the nonce advances once per
// encryption, so twice per call here.
func (c *Conn) Write(b []byte) (int, error) {
	if len(b) > lnwireMaxMessagePayload {
		return 0, ErrMaxMessageLengthExceededLocal
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	var lengthBytes [lengthHeaderSize]byte
	binary.BigEndian.PutUint16(lengthBytes[:], uint16(len(b)))

	cipherLen, err := c.send.Encrypt(nil, nil, lengthBytes[:])
	if err != nil {
		return 0, err
	}
	if _, err := c.Conn.Write(cipherLen); err != nil {
		return 0, err
	}

	cipherPayload, err := c.send.Encrypt(nil, nil, b)
	if err != nil {
		return 0, err
	}
	if _, err := c.Conn.Write(cipherPayload); err != nil {
		return 0, err
	}

	return len(b), nil
}

// ReadNextMessage blocks until a full frame has been read and decrypted,
// returning its plaintext payload. This is the primary read API; Read
// exists only to satisfy net.Conn for callers (like io.Copy) that expect
// a byte-stream interface, draining ReadNextMessage's output through an
// internal buffer.
func (c *Conn) ReadNextMessage() ([]byte, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()

	cipherLen := make([]byte, lengthHeaderSize+macSize)
	if err := readFull(c.Conn, cipherLen); err != nil {
		return nil, err
	}

	lengthBytes, err := c.recv.Decrypt(nil, nil, cipherLen)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(lengthBytes)
	if int(length) > lnwireMaxMessagePayload {
		return nil, ErrMaxMessageLengthExceeded
	}

	cipherPayload := make([]byte, int(length)+macSize)
	if err := readFull(c.Conn, cipherPayload); err != nil {
		return nil, err
	}

	return c.recv.Decrypt(nil, nil, cipherPayload)
}

// Read implements net.Conn by pulling whole frames via ReadNextMessage and
// serving them out of an internal buffer.
func (c *Conn) Read(b []byte) (int, error) {
	if c.readBufPos >= c.readBufLen {
		msg, err := c.ReadNextMessage()
		if err != nil {
			return 0, err
		}
		if len(msg) > len(c.readBuf) {
			return 0, ErrMaxMessageLengthExceeded
		}
		c.readBuf.Recycle()
		copy(c.readBuf[:], msg)
		c.readBufPos = 0
		c.readBufLen = len(msg)
	}

	n := copy(b, c.readBuf[c.readBufPos:c.readBufLen])
	c.readBufPos += n
	return n, nil
}

// lnwireMaxMessagePayload is the maximum payload size a single frame may
// carry, matching lnwire.MaxMessagePayload.
const lnwireMaxMessagePayload = 65535
