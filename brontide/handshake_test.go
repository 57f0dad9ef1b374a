package brontide

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

// repeatHex builds a 32-byte hex-encoded key by repeating byte b 32 times,
// avoiding error-prone hand-typed 64-character hex literals.
func repeatHex(b byte) string {
	return strings.Repeat(hex.EncodeToString([]byte{b}), 32)
}

// fixedEphemeral overrides genEphemeralKey for the duration of a test,
// letting the handshake be driven with known ephemeral keys instead of
// fresh random ones.
func fixedEphemeral(t *testing.T, keys ...string) func() {
	t.Helper()

	idx := 0
	orig := genEphemeralKey
	genEphemeralKey = func() (*btcec.PrivateKey, error) {
		raw, err := hex.DecodeString(keys[idx])
		if err != nil {
			return nil, err
		}
		idx++
		priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
		return priv, nil
	}
	return func() { genEphemeralKey = orig }
}

func mustKey(t *testing.T, hexKey string) *btcec.PrivateKey {
	t.Helper()
	raw, err := hex.DecodeString(hexKey)
	require.NoError(t, err)
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return priv
}

// TestHandshakeDeterministic drives the three-act handshake with fixed
// static and ephemeral keys on both sides and checks that it is fully
// reproducible: the same key material always produces the same acts and
// the same pair of split transport keys, with the initiator's send key
// equal to the responder's recv key and vice versa.
func TestHandshakeDeterministic(t *testing.T) {
	initStatic := mustKey(t, repeatHex(0x11))
	respStatic := mustKey(t, repeatHex(0x22))

	runOnce := func() ([act1Size]byte, [act2Size]byte, [act3Size]byte, cipherState, cipherState, cipherState, cipherState) {
		restore := fixedEphemeral(t, repeatHex(0x12), repeatHex(0x21))
		defer restore()

		initiator := newHandshakeState(true, respStatic.PubKey(), initStatic)
		responder := newHandshakeState(false, respStatic.PubKey(), respStatic)

		actOne, err := initiator.GenActOne()
		require.NoError(t, err)
		require.NoError(t, responder.RecvActOne(actOne))

		actTwo, err := responder.GenActTwo()
		require.NoError(t, err)
		require.NoError(t, initiator.RecvActTwo(actTwo))

		actThree, err := initiator.GenActThree()
		require.NoError(t, err)
		require.NoError(t, responder.RecvActThree(actThree))

		initSend, initRecv := initiator.split()
		respSend, respRecv := responder.split()

		return actOne, actTwo, actThree, initSend, initRecv, respSend, respRecv
	}

	actOneA, actTwoA, actThreeA, initSendA, initRecvA, respSendA, respRecvA := runOnce()
	actOneB, actTwoB, actThreeB, initSendB, initRecvB, respSendB, respRecvB := runOnce()

	require.Equal(t, actOneA, actOneB)
	require.Equal(t, actTwoA, actTwoB)
	require.Equal(t, actThreeA, actThreeB)

	require.Equal(t, initSendA.secretKey, respRecvA.secretKey,
		"initiator's send key must match responder's recv key")
	require.Equal(t, initRecvA.secretKey, respSendA.secretKey,
		"initiator's recv key must match responder's send key")
	require.NotEqual(t, initSendA.secretKey, initRecvA.secretKey)

	require.Equal(t, initSendA.secretKey, initSendB.secretKey)
	require.Equal(t, initRecvA.secretKey, initRecvB.secretKey)
	require.Equal(t, respSendA.secretKey, respSendB.secretKey)
	require.Equal(t, respRecvA.secretKey, respRecvB.secretKey)
}

// TestHandshakeRejectsUnknownVersion checks that a non-zero version byte
// on an incoming act is fatal, per §4.4.
func TestHandshakeRejectsUnknownVersion(t *testing.T) {
	restore := fixedEphemeral(t, repeatHex(0x12), repeatHex(0x21))
	defer restore()

	initStatic := mustKey(t, repeatHex(0x11))
	respStatic := mustKey(t, repeatHex(0x22))

	initiator := newHandshakeState(true, respStatic.PubKey(), initStatic)
	responder := newHandshakeState(false, respStatic.PubKey(), respStatic)

	actOne, err := initiator.GenActOne()
	require.NoError(t, err)

	actOne[0] = 0xff
	require.Equal(t, ErrUnknownHandshakeVersion, responder.RecvActOne(actOne))
}
