package blob

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHChaCha20Vector checks the subkey derivation against the published
// HChaCha20 test vector, independent of any XChaCha20 framing.
func TestHChaCha20Vector(t *testing.T) {
	var key BreachKey
	for i := range key {
		key[i] = byte(i)
	}

	in16, err := hex.DecodeString("000000090000004a00000000" +
		"31415927")
	require.NoError(t, err)

	expected, err := hex.DecodeString("82413b4227b27bfed30e42508a877d73" +
		"a0f9e4d58a74a853c12ec41326d3ecdc")
	require.NoError(t, err)

	subkey := hChaCha20(key, in16)
	require.True(t, bytes.Equal(subkey[:], expected))
}

// TestEncryptDecryptRoundTrip exercises the encrypt/decrypt round trip
// from §8: a fixed 32-byte key and a 274-byte plaintext of 0x42 bytes
// must decrypt back to themselves, and flipping any output byte must
// make decryption fail.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	var key BreachKey
	for i := range key {
		key[i] = 0x41
	}

	plaintext := bytes.Repeat([]byte{0x42}, PlaintextSize)

	blob, err := encrypt(key, plaintext)
	require.NoError(t, err)
	require.Len(t, blob, CiphertextSize)

	recovered, err := decrypt(key, blob)
	require.NoError(t, err)
	require.True(t, bytes.Equal(plaintext, recovered))

	for i := range blob {
		tampered := make([]byte, len(blob))
		copy(tampered, blob)
		tampered[i] ^= 0xff

		_, err := decrypt(key, tampered)
		require.Error(t, err)
	}
}

func TestDecryptTooShort(t *testing.T) {
	var key BreachKey

	_, err := decrypt(key, make([]byte, 10))
	require.Equal(t, ErrCiphertextTooShort, err)
}

func TestNewBreachHint(t *testing.T) {
	var key BreachKey
	for i := range key {
		key[i] = byte(i)
	}

	hint := NewBreachHint(key)
	require.True(t, bytes.Equal(hint[:], key[:16]))
}
