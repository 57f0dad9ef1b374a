package wtclient

import (
	"crypto/sha256"
	"testing"

	"github.com/breez/lnwatchtower/input"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

func genTestKey(t *testing.T) *btcec.PublicKey {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	return priv.PubKey()
}

func TestCaptureDrainsOnlyFullyPopulatedRecords(t *testing.T) {
	delayKey := genTestKey(t)
	revokeKey := genTestKey(t)

	script, err := input.CommitScriptToSelf(144, delayKey, revokeKey)
	require.NoError(t, err)
	scriptHash := sha256.Sum256(script)

	c := NewCapture()

	var chanID lnwire.ChannelID
	chanID[0] = 0x01

	c.RegisterChannel(chanID, ChannelKeys{
		RevocationPubKey: revokeKey,
		LocalDelayPubKey: delayKey,
		SweepAddress:     []byte{0xaa, 0xbb},
	})

	var breachTxid [32]byte
	breachTxid[0] = 0x42

	// Revocation secret arrives first, without signatures: should not
	// be drainable yet.
	c.OnChannelUpdate(chanID, breachTxid, 7, scriptHash, nil, true)
	require.Empty(t, c.DrainReady(10))

	// Signatures arrive: now it should be ready.
	sigs := &SignaturesBundle{}
	c.OnChannelUpdate(chanID, breachTxid, 7, scriptHash, sigs, false)

	records := c.DrainReady(10)
	require.Len(t, records, 1)
	require.Equal(t, breachTxid, records[0].BreachTxid)
	require.Equal(t, uint32(144), records[0].CSVDelay)

	// Already drained; a second drain yields nothing.
	require.Empty(t, c.DrainReady(10))
}

func TestCaptureOnChannelClosedDropsPending(t *testing.T) {
	delayKey := genTestKey(t)
	revokeKey := genTestKey(t)

	c := NewCapture()

	var chanID lnwire.ChannelID
	chanID[0] = 0x02

	c.RegisterChannel(chanID, ChannelKeys{
		RevocationPubKey: revokeKey,
		LocalDelayPubKey: delayKey,
	})

	var breachTxid [32]byte
	var scriptHash [32]byte

	// Unknown script hash: brute force fails, record is rejected, not
	// an error an unregistered-channel update would leave dangling.
	c.OnChannelUpdate(chanID, breachTxid, 1, scriptHash, nil, true)
	require.Empty(t, c.DrainReady(10))

	// A matching script hash with only the revocation secret leaves a
	// pending record at height 2, still waiting for its signatures.
	script, err := input.CommitScriptToSelf(144, delayKey, revokeKey)
	require.NoError(t, err)
	validHash := sha256.Sum256(script)
	c.OnChannelUpdate(chanID, breachTxid, 2, validHash, nil, true)
	require.Empty(t, c.DrainReady(10))

	c.OnChannelClosed(chanID)

	// Updates for a closed channel are now for an unregistered
	// channel and are dropped: the signatures that would have completed
	// the pending record never make it ready.
	c.OnChannelUpdate(chanID, breachTxid, 2, validHash, &SignaturesBundle{}, true)
	require.Empty(t, c.DrainReady(10))
}

func TestCaptureDrainReadyRespectsMaxCount(t *testing.T) {
	delayKey := genTestKey(t)
	revokeKey := genTestKey(t)

	script, err := input.CommitScriptToSelf(1, delayKey, revokeKey)
	require.NoError(t, err)
	scriptHash := sha256.Sum256(script)

	c := NewCapture()

	var chanID lnwire.ChannelID
	c.RegisterChannel(chanID, ChannelKeys{
		RevocationPubKey: revokeKey,
		LocalDelayPubKey: delayKey,
	})

	for i := uint64(0); i < 3; i++ {
		var breachTxid [32]byte
		breachTxid[0] = byte(i)
		c.OnChannelUpdate(chanID, breachTxid, i, scriptHash, &SignaturesBundle{}, true)
	}

	first := c.DrainReady(2)
	require.Len(t, first, 2)

	second := c.DrainReady(2)
	require.Len(t, second, 1)
}
