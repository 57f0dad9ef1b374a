package brontide

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/btcsuite/btcd/btcec"
	"github.com/go-errors/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// protocolName is the exact ASCII byte string mixed into the initial
	// handshake hash. Unlike every off-the-shelf Noise implementation,
	// which hashes "Noise_XK_25519_ChaChaPoly_SHA256", this subsystem
	// must hash the secp256k1 variant or it will derive a chaining key
	// that no LND tower will ever agree with.
	protocolName = "Noise_XK_secp256k1_ChaChaPoly_SHA256"

	// prologue is mixed into the handshake hash immediately after
	// initialization, before the remote static key.
	prologue = "lightning"

	// keyRotationInterval is the number of messages that may be
	// encrypted in one direction under a single chaining-key-derived
	// key before that direction's key is rotated forward.
	keyRotationInterval = 1000

	// macSize is the size, in bytes, of the Poly1305 authentication tag
	// appended to every AEAD ciphertext.
	macSize = 16

	// keySize is the size, in bytes, of a ChaCha20-Poly1305 key.
	keySize = 32

	// lengthHeaderSize is the size of the plaintext length prefix
	// encrypted ahead of every message payload.
	lengthHeaderSize = 2
)

// ErrMaxMessageLengthExceeded is returned when a decrypted length prefix
// claims a payload larger than the protocol allows.
var ErrMaxMessageLengthExceeded = errors.New("the message to be " +
	"encrypted exceeds the maximum message payload")

// ErrMACMismatch signals that a Poly1305 tag failed to validate, which is
// fatal to the session per §4.4 / §4.7 of the bridge design: it means
// either message corruption, a protocol desync after key rotation, or
// active interference.
var ErrMACMismatch = errors.New("the authentication tag on the message " +
	"was invalid")

// cipherState encapsulates the per-direction symmetric key material used
// for the AEAD transport cipher once the handshake has completed: a
// 32-byte key, a chaining key used to rotate that key forward, and a
// monotonically-increasing nonce.
type cipherState struct {
	nonce         uint64
	secretKey     [keySize]byte
	salt          [32]byte
	ckAEAD        cipher.AEAD
	msgsSinceKeyRotation uint32
}

// InitializeKey sets the active key and resets the nonce counter, used
// both for the initial post-handshake key and for every subsequent
// rotation.
func (c *cipherState) InitializeKey(key [keySize]byte) error {
	c.secretKey = key
	c.nonce = 0

	aead, err := chacha20poly1305.New(c.secretKey[:])
	if err != nil {
		return err
	}
	c.ckAEAD = aead

	return nil
}

// InitializeKeyWithSalt is identical to InitializeKey but additionally
// records the chaining key the current key was derived from, which is
// required input to the next rotation.
func (c *cipherState) InitializeKeyWithSalt(salt [32]byte, key [keySize]byte) error {
	c.salt = salt
	return c.InitializeKey(key)
}

// nonceBytes returns the 12-byte little-endian ChaCha20-Poly1305 nonce
// matching the Noise protocol convention: 4 zero bytes followed by the
// little-endian-encoded 8-byte counter.
func (c *cipherState) nonceBytes() [12]byte {
	var n [12]byte
	for i := uint(0); i < 8; i++ {
		n[4+i] = byte(c.nonce >> (8 * i))
	}
	return n
}

// Encrypt seals plaintext with the current key, appending the result (and
// its tag) to dst, then advances the nonce and rotates the key if this
// direction has reached its rotation interval.
func (c *cipherState) Encrypt(associatedData, dst, plaintext []byte) ([]byte, error) {
	n := c.nonceBytes()
	ciphertext := c.ckAEAD.Seal(dst, n[:], plaintext, associatedData)

	if err := c.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return ciphertext, nil
}

// Decrypt opens ciphertext with the current key, then advances the nonce
// and rotates the key as necessary.
func (c *cipherState) Decrypt(associatedData, dst, ciphertext []byte) ([]byte, error) {
	n := c.nonceBytes()
	plaintext, err := c.ckAEAD.Open(dst, n[:], ciphertext, associatedData)
	if err != nil {
		return nil, ErrMACMismatch
	}

	if err := c.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return plaintext, nil
}

// rotateIfNeeded advances the per-direction message counter, then, every
// keyRotationInterval messages, derives a fresh key (and resets the
// counter + nonce to zero) via HKDF over the chaining key and the
// outgoing key, per §4.4's key-rotation rule.
func (c *cipherState) rotateIfNeeded() error {
	c.nonce++
	c.msgsSinceKeyRotation++

	if c.msgsSinceKeyRotation != keyRotationInterval {
		return nil
	}

	newSalt, newKey := hkdf(c.salt[:], c.secretKey[:])
	c.msgsSinceKeyRotation = 0

	return c.InitializeKeyWithSalt(newSalt, newKey)
}

// symmetricState implements the Noise_XK SymmetricState object: a running
// chaining key and transcript hash, plus an (optional, once keyed) AEAD
// cipher used by encryptAndHash/decryptAndHash during the handshake.
type symmetricState struct {
	cipherState

	chainingKey [32]byte
	handshakeDigest [32]byte
}

func newSymmetricState() *symmetricState {
	s := &symmetricState{}

	h := sha256.Sum256([]byte(protocolName))
	s.handshakeDigest = h
	s.chainingKey = h

	return s
}

// mixKey incorporates input keying material (typically the output of an
// ECDH) into the chaining key, deriving a fresh transport key from the
// result.
func (s *symmetricState) mixKey(input []byte) {
	newCk, newKey := hkdf(s.chainingKey[:], input)

	s.chainingKey = newCk
	_ = s.InitializeKeyWithSalt(newCk, newKey)
}

// mixHash hashes the given data into the running transcript hash.
func (s *symmetricState) mixHash(data []byte) {
	h := sha256.New()
	h.Write(s.handshakeDigest[:])
	h.Write(data)
	copy(s.handshakeDigest[:], h.Sum(nil))
}

// encryptAndHash encrypts plaintext (empty is valid) with the current key
// and the running transcript hash as associated data, then mixes the
// resulting ciphertext into the transcript hash.
func (s *symmetricState) encryptAndHash(plaintext []byte) ([]byte, error) {
	var ciphertext []byte
	var err error

	if s.ckAEAD == nil {
		ciphertext = plaintext
	} else {
		ciphertext, err = s.Encrypt(s.handshakeDigest[:], nil, plaintext)
		if err != nil {
			return nil, err
		}
	}

	s.mixHash(ciphertext)

	return ciphertext, nil
}

// decryptAndHash is the inverse of encryptAndHash.
func (s *symmetricState) decryptAndHash(ciphertext []byte) ([]byte, error) {
	var plaintext []byte
	var err error

	if s.ckAEAD == nil {
		plaintext = ciphertext
	} else {
		plaintext, err = s.Decrypt(s.handshakeDigest[:], nil, ciphertext)
		if err != nil {
			return nil, err
		}
	}

	s.mixHash(ciphertext)

	return plaintext, nil
}

// split derives the two final, per-direction transport keys from the
// final chaining key, returning them as a pair of cipherStates ready to
// be installed as the send/recv states.
func (s *symmetricState) split() (cipherState, cipherState) {
	ck1, ck2 := hkdf(s.chainingKey[:], nil)

	var c1, c2 cipherState
	_ = c1.InitializeKeyWithSalt(s.chainingKey, ck1)
	_ = c2.InitializeKeyWithSalt(s.chainingKey, ck2)

	return c1, c2
}

// hkdf implements the two-output HKDF-SHA256 construction used throughout
// Noise: HKDF-Extract(salt, ikm) yields a temporary key, and two
// HKDF-Expand rounds over that temporary key yield the pair of 32-byte
// outputs. This is deliberately hand-rolled rather than delegated to
// golang.org/x/crypto/hkdf's io.Reader interface, since Noise's second
// output is chained from the first (used as expand "info"), which the
// generic reader does not expose.
func hkdf(salt, ikm []byte) ([32]byte, [32]byte) {
	tempKey := hmacSum(salt, ikm)

	var output1, output2 [32]byte

	out1 := hmacSum(tempKey[:], []byte{0x01})
	output1 = out1

	var buf []byte
	buf = append(buf, output1[:]...)
	buf = append(buf, 0x02)
	out2 := hmacSum(tempKey[:], buf)
	output2 = out2

	return output1, output2
}

func hmacSum(key, data []byte) [32]byte {
	var mac hash.Hash = hmac.New(sha256.New, key)
	mac.Write(data)

	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// ecdh computes DH(a,b) as defined in §4.4: SHA256 of the SEC1-compressed
// shared point, matching libsecp256k1's SharedSecret::new convention used
// by LND. A hand-rolled implementation that instead hashes (or returns)
// the raw x-coordinate will silently fail to interoperate.
func ecdh(priv *btcec.PrivateKey, pub *btcec.PublicKey) [32]byte {
	x, y := btcec.S256().ScalarMult(pub.X, pub.Y, priv.D.Bytes())

	sharedPoint := btcec.PublicKey{Curve: btcec.S256(), X: x, Y: y}

	return sha256.Sum256(sharedPoint.SerializeCompressed())
}
