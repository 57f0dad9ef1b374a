package brontide

import (
	"io"

	"github.com/btcsuite/btcd/btcec"
	"github.com/go-errors/errors"
)

const (
	// act1Size is the length, in bytes, of Act One: a version byte, a
	// 33-byte compressed ephemeral pubkey, and a 16-byte MAC.
	act1Size = 1 + 33 + 16

	// act2Size is identical in shape to Act One.
	act2Size = 1 + 33 + 16

	// act3Size is the length of Act Three: a version byte, a 33-byte
	// encrypted static pubkey with its 16-byte tag, and a final 16-byte
	// MAC over an empty payload.
	act3Size = 1 + 33 + 16 + 16

	// handshakeVersion is the only version byte this implementation
	// will ever emit, and the only one it accepts.
	handshakeVersion = 0
)

// ErrUnknownHandshakeVersion is returned when an incoming handshake
// message's version byte is not 0x00.
var ErrUnknownHandshakeVersion = errors.New("invalid handshake version")

// genEphemeralKey produces the per-act ephemeral keypair. It is a package
// variable rather than a direct call so the handshake's own tests can pin
// it to fixed ephemeral keys and check the handshake is reproducible.
var genEphemeralKey = func() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey(btcec.S256())
}

// handshakeState is the Noise_XK initiator/responder state machine. It
// walks through exactly one of Act One/Two/Three per call, in the order
// dictated by whether this side is the initiator or responder.
type handshakeState struct {
	symmetricState

	initiator bool

	localStatic    *btcec.PrivateKey
	localEphemeral *btcec.PrivateKey

	remoteStatic    *btcec.PublicKey
	remoteEphemeral *btcec.PublicKey
}

// newHandshakeState initializes the SymmetricState per §4.4: hash the
// protocol name, mix in the prologue, then mix in the remote's static key
// (known in advance, since this is Noise_XK).
func newHandshakeState(initiator bool, remoteStatic *btcec.PublicKey,
	localStatic *btcec.PrivateKey) *handshakeState {

	h := &handshakeState{
		symmetricState: *newSymmetricState(),
		initiator:      initiator,
		localStatic:    localStatic,
		remoteStatic:   remoteStatic,
	}

	h.mixHash([]byte(prologue))

	h.mixHash(remoteStatic.SerializeCompressed())

	return h
}

// GenActOne is called by the initiator to produce Act One: an ephemeral
// key, mixed into the hash, followed by an ES DH and an (empty)
// authenticated payload.
func (h *handshakeState) GenActOne() ([act1Size]byte, error) {
	var actOne [act1Size]byte

	e, err := genEphemeralKey()
	if err != nil {
		return actOne, err
	}
	h.localEphemeral = e

	ephemeral := e.PubKey().SerializeCompressed()
	h.mixHash(ephemeral)

	es := ecdh(h.localEphemeral, h.remoteStatic)
	h.mixKey(es[:])

	authPayload, err := h.encryptAndHash(nil)
	if err != nil {
		return actOne, err
	}

	actOne[0] = handshakeVersion
	copy(actOne[1:34], ephemeral)
	copy(actOne[34:], authPayload)

	return actOne, nil
}

// RecvActOne is called by the responder upon receipt of Act One.
func (h *handshakeState) RecvActOne(actOne [act1Size]byte) error {
	if actOne[0] != handshakeVersion {
		return ErrUnknownHandshakeVersion
	}

	e, err := btcec.ParsePubKey(actOne[1:34], btcec.S256())
	if err != nil {
		return err
	}
	h.remoteEphemeral = e

	h.mixHash(e.SerializeCompressed())

	es := ecdh(h.localStatic, h.remoteEphemeral)
	h.mixKey(es[:])

	_, err = h.decryptAndHash(actOne[34:])
	return err
}

// GenActTwo is called by the responder to produce Act Two, mirroring Act
// One's shape with a fresh ephemeral key and an EE DH.
func (h *handshakeState) GenActTwo() ([act2Size]byte, error) {
	var actTwo [act2Size]byte

	e, err := genEphemeralKey()
	if err != nil {
		return actTwo, err
	}
	h.localEphemeral = e

	ephemeral := e.PubKey().SerializeCompressed()
	h.mixHash(ephemeral)

	ee := ecdh(h.localEphemeral, h.remoteEphemeral)
	h.mixKey(ee[:])

	authPayload, err := h.encryptAndHash(nil)
	if err != nil {
		return actTwo, err
	}

	actTwo[0] = handshakeVersion
	copy(actTwo[1:34], ephemeral)
	copy(actTwo[34:], authPayload)

	return actTwo, nil
}

// RecvActTwo is called by the initiator upon receipt of Act Two.
func (h *handshakeState) RecvActTwo(actTwo [act2Size]byte) error {
	if actTwo[0] != handshakeVersion {
		return ErrUnknownHandshakeVersion
	}

	re, err := btcec.ParsePubKey(actTwo[1:34], btcec.S256())
	if err != nil {
		return err
	}
	h.remoteEphemeral = re

	h.mixHash(re.SerializeCompressed())

	ee := ecdh(h.localEphemeral, h.remoteEphemeral)
	h.mixKey(ee[:])

	_, err = h.decryptAndHash(actTwo[34:])
	return err
}

// GenActThree is called by the initiator: it authenticates its static key
// to the responder (encrypted under the current transport key), mixes in
// an SE DH, and finally emits an authenticated empty payload.
func (h *handshakeState) GenActThree() ([act3Size]byte, error) {
	var actThree [act3Size]byte

	ourPubkey := h.localStatic.PubKey().SerializeCompressed()
	ciphertext, err := h.encryptAndHash(ourPubkey)
	if err != nil {
		return actThree, err
	}

	se := ecdh(h.localStatic, h.remoteEphemeral)
	h.mixKey(se[:])

	authPayload, err := h.encryptAndHash(nil)
	if err != nil {
		return actThree, err
	}

	actThree[0] = handshakeVersion
	copy(actThree[1:1+33+16], ciphertext)
	copy(actThree[1+33+16:], authPayload)

	return actThree, nil
}

// RecvActThree is called by the responder upon receipt of Act Three. It
// decrypts and authenticates the initiator's static key, completing
// mutual authentication.
func (h *handshakeState) RecvActThree(actThree [act3Size]byte) error {
	if actThree[0] != handshakeVersion {
		return ErrUnknownHandshakeVersion
	}

	remotePubBytes, err := h.decryptAndHash(actThree[1 : 1+33+16])
	if err != nil {
		return err
	}

	remoteStatic, err := btcec.ParsePubKey(remotePubBytes, btcec.S256())
	if err != nil {
		return err
	}
	h.remoteStatic = remoteStatic

	se := ecdh(h.localEphemeral, remoteStatic)
	h.mixKey(se[:])

	_, err = h.decryptAndHash(actThree[1+33+16:])
	return err
}

// split finalizes the handshake, returning the send and recv cipherStates
// oriented correctly for this side (initiator sends with the first
// derived key, responder sends with the second).
func (h *handshakeState) split() (cipherState, cipherState) {
	c1, c2 := h.symmetricState.split()

	if h.initiator {
		return c1, c2
	}
	return c2, c1
}

// readFull is a small helper wrapping io.ReadFull so handshake callers
// read a short error message in one place rather than re-deriving it.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
