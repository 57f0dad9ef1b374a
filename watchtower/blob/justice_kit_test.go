package blob

import (
	"bytes"
	"testing"

	"github.com/breez/lnwatchtower/lnwire"
	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

func randPubKey(t *testing.T) PubKey {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	var pk PubKey
	copy(pk[:], priv.PubKey().SerializeCompressed())
	return pk
}

func TestJusticeKitEncodeDecodeRoundTrip(t *testing.T) {
	kit := &JusticeKit{
		BlobType:         TypeAltruistCommit,
		SweepAddress:     bytes.Repeat([]byte{0xaa}, 22),
		RevocationPubKey: randPubKey(t),
		LocalDelayPubKey: randPubKey(t),
		CSVDelay:         144,
	}
	copy(kit.CommitToLocalSig[:], bytes.Repeat([]byte{0x01}, lnwire.SigLen))
	copy(kit.CommitToRemoteSig[:], bytes.Repeat([]byte{0x02}, lnwire.SigLen))

	plaintext, err := kit.encodePlaintext()
	require.NoError(t, err)
	require.Len(t, plaintext, PlaintextSize)

	decoded, err := decodePlaintext(plaintext, TypeAltruistCommit)
	require.NoError(t, err)

	require.Equal(t, kit.RevocationPubKey, decoded.RevocationPubKey)
	require.Equal(t, kit.LocalDelayPubKey, decoded.LocalDelayPubKey)
	require.Equal(t, kit.CSVDelay, decoded.CSVDelay)
	require.Equal(t, kit.SweepAddress, decoded.SweepAddress)
	require.Equal(t, kit.CommitToLocalSig, decoded.CommitToLocalSig)
	require.Equal(t, kit.CommitToRemoteSig, decoded.CommitToRemoteSig)
}

func TestJusticeKitEncryptDecryptRoundTrip(t *testing.T) {
	kit := &JusticeKit{
		BlobType:         TypeAltruistCommit,
		SweepAddress:     bytes.Repeat([]byte{0xbb}, 20),
		RevocationPubKey: randPubKey(t),
		LocalDelayPubKey: randPubKey(t),
		CSVDelay:         288,
	}
	copy(kit.CommitToLocalSig[:], bytes.Repeat([]byte{0x03}, lnwire.SigLen))
	copy(kit.CommitToRemoteSig[:], bytes.Repeat([]byte{0x04}, lnwire.SigLen))

	var key BreachKey
	for i := range key {
		key[i] = byte(i)
	}

	blob, err := kit.Encrypt(key)
	require.NoError(t, err)
	require.Len(t, blob, CiphertextSize)

	decoded, err := Decrypt(key, blob, TypeAltruistCommit)
	require.NoError(t, err)
	require.Equal(t, kit.RevocationPubKey, decoded.RevocationPubKey)
	require.Equal(t, kit.CommitToLocalSig, decoded.CommitToLocalSig)
}

func TestEncodePlaintextRejectsOversizedSweep(t *testing.T) {
	kit := &JusticeKit{
		SweepAddress:     bytes.Repeat([]byte{0xaa}, MaxSweepAddrSize+1),
		RevocationPubKey: randPubKey(t),
		LocalDelayPubKey: randPubKey(t),
	}

	_, err := kit.encodePlaintext()
	require.Equal(t, ErrSweepAddressToLong, err)
}

func TestEncodePlaintextRejectsBadPubKeyPrefix(t *testing.T) {
	kit := &JusticeKit{
		LocalDelayPubKey: randPubKey(t),
	}
	kit.RevocationPubKey[0] = 0x04

	_, err := kit.encodePlaintext()
	require.Equal(t, ErrInvalidPubKeyPrefix, err)
}

func TestSizeUnknownType(t *testing.T) {
	require.Equal(t, 0, Size(Type(0xffff)))
}

func TestHasCommitToRemoteOutput(t *testing.T) {
	kit := &JusticeKit{}
	require.False(t, kit.HasCommitToRemoteOutput())

	kit.CommitToRemotePubKey = randPubKey(t)
	require.True(t, kit.HasCommitToRemoteOutput())
}
