package blob

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// xNonceSize is the size, in bytes, of an XChaCha20-Poly1305 nonce.
	xNonceSize = 24

	// subNonceSize is the size of the 12-byte ChaCha20-Poly1305 nonce
	// derived from the final 8 bytes of the XChaCha20 nonce.
	subNonceSize = 12

	// tagSize is the size of the Poly1305 authentication tag.
	tagSize = 16

	// keySize is the size of a breach-txid-derived encryption key.
	keySize = 32
)

// BreachKey is the 32-byte key used to encrypt and decrypt a blob: the
// raw, unreversed breach transaction's txid. A tower observing a
// candidate breach transaction on-chain derives this key directly from
// the txid it sees, so no reversal may ever be introduced along this
// path — see §9's byte-order design note.
type BreachKey [keySize]byte

// BreachHint is the first 16 bytes of the breach txid, used by a tower to
// index blobs by observed on-chain txid prefix.
type BreachHint [16]byte

// NewBreachHint derives the Hint for a given breach key.
func NewBreachHint(key BreachKey) BreachHint {
	var h BreachHint
	copy(h[:], key[:16])
	return h
}

// Encrypt produces an EncryptedBlob (C3): a 314-byte
// nonce || ciphertext || tag, XChaCha20-Poly1305-sealing this kit's
// 274-byte plaintext under key.
func (b *JusticeKit) Encrypt(key BreachKey) ([]byte, error) {
	if Size(b.BlobType) == 0 {
		return nil, ErrUnknownBlobType
	}

	plaintext, err := b.encodePlaintext()
	if err != nil {
		return nil, err
	}

	return encrypt(key, plaintext)
}

// Decrypt reverses Encrypt, parsing the recovered plaintext as a
// JusticeKit of the given blob type.
func Decrypt(key BreachKey, blob []byte, blobType Type) (*JusticeKit, error) {
	if Size(blobType) == 0 {
		return nil, ErrUnknownBlobType
	}

	plaintext, err := decrypt(key, blob)
	if err != nil {
		return nil, err
	}

	return decodePlaintext(plaintext, blobType)
}

// encrypt implements the raw XChaCha20-Poly1305 construction described in
// §4.3: a fresh random 24-byte nonce, an HChaCha20-derived subkey from its
// first 16 bytes, and a 12-byte ChaCha20-Poly1305 sub-nonce built from
// 0x00000000 || nonce[16:24].
func encrypt(key BreachKey, plaintext []byte) ([]byte, error) {
	var nonce [xNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	subkey := hChaCha20(key, nonce[:16])

	aead, err := chacha20poly1305.New(subkey[:])
	if err != nil {
		return nil, err
	}

	subNonce := buildSubNonce(nonce[:])

	out := make([]byte, 0, xNonceSize+len(plaintext)+tagSize)
	out = append(out, nonce[:]...)
	out = aead.Seal(out, subNonce[:], plaintext, nil)

	return out, nil
}

// decrypt is the inverse of encrypt.
func decrypt(key BreachKey, blob []byte) ([]byte, error) {
	if len(blob) < xNonceSize+tagSize {
		return nil, ErrCiphertextTooShort
	}

	nonce := blob[:xNonceSize]
	ciphertext := blob[xNonceSize:]

	subkey := hChaCha20(key, nonce[:16])

	aead, err := chacha20poly1305.New(subkey[:])
	if err != nil {
		return nil, err
	}

	subNonce := buildSubNonce(nonce)

	plaintext, err := aead.Open(nil, subNonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailure
	}

	return plaintext, nil
}

// buildSubNonce constructs the 12-byte ChaCha20-Poly1305 nonce used for
// the inner AEAD call: four zero bytes followed by the last 8 bytes of
// the 24-byte XChaCha20 nonce.
func buildSubNonce(nonce24 []byte) [subNonceSize]byte {
	var sub [subNonceSize]byte
	copy(sub[4:], nonce24[16:24])
	return sub
}

// hChaCha20 computes the HChaCha20 subkey derivation: initialise the
// ChaCha20 state with the constants, the 32-byte key, and the 16-byte
// input in place of the counter+nonce, run 20 rounds (10 double-rounds),
// then take output words 0..3 and 12..15 *without* adding back the
// initial state — the crucial difference from a normal ChaCha20 block
// that makes this a secure subkey derivation rather than a keystream.
func hChaCha20(key BreachKey, in16 []byte) [32]byte {
	var state [16]uint32

	state[0] = 0x61707865 // "expa"
	state[1] = 0x3320646e // "nd 3"
	state[2] = 0x79622d32 // "2-by"
	state[3] = 0x6b206574 // "te k"

	for i := 0; i < 8; i++ {
		state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}

	for i := 0; i < 4; i++ {
		state[12+i] = binary.LittleEndian.Uint32(in16[i*4 : i*4+4])
	}

	for i := 0; i < 10; i++ {
		quarterRound(&state, 0, 4, 8, 12)
		quarterRound(&state, 1, 5, 9, 13)
		quarterRound(&state, 2, 6, 10, 14)
		quarterRound(&state, 3, 7, 11, 15)

		quarterRound(&state, 0, 5, 10, 15)
		quarterRound(&state, 1, 6, 11, 12)
		quarterRound(&state, 2, 7, 8, 13)
		quarterRound(&state, 3, 4, 9, 14)
	}

	var out [32]byte
	binary.LittleEndian.PutUint32(out[0:4], state[0])
	binary.LittleEndian.PutUint32(out[4:8], state[1])
	binary.LittleEndian.PutUint32(out[8:12], state[2])
	binary.LittleEndian.PutUint32(out[12:16], state[3])
	binary.LittleEndian.PutUint32(out[16:20], state[12])
	binary.LittleEndian.PutUint32(out[20:24], state[13])
	binary.LittleEndian.PutUint32(out[24:28], state[14])
	binary.LittleEndian.PutUint32(out[28:32], state[15])

	return out
}

func quarterRound(state *[16]uint32, a, b, c, d int) {
	state[a] += state[b]
	state[d] ^= state[a]
	state[d] = rotl32(state[d], 16)

	state[c] += state[d]
	state[b] ^= state[c]
	state[b] = rotl32(state[b], 12)

	state[a] += state[b]
	state[d] ^= state[a]
	state[d] = rotl32(state[d], 8)

	state[c] += state[d]
	state[b] ^= state[c]
	state[b] = rotl32(state[b], 7)
}

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}
