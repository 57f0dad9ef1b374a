package input

import (
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) *btcec.PublicKey {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	return priv.PubKey()
}

func TestCommitScriptToSelf(t *testing.T) {
	delayKey := genKey(t)
	revokeKey := genKey(t)

	script, err := CommitScriptToSelf(144, delayKey, revokeKey)
	require.NoError(t, err)
	require.True(t, len(script) > 0)
	require.Equal(t, byte(txscript.OP_IF), script[0])
	require.Equal(t, byte(txscript.OP_CHECKSIG), script[len(script)-1])
}

func TestCommitScriptToRemoteConfirmed(t *testing.T) {
	remoteKey := genKey(t)

	script, err := CommitScriptToRemoteConfirmed(remoteKey)
	require.NoError(t, err)
	require.True(t, len(script) > 0)
	require.Equal(t, byte(txscript.OP_CHECKSEQUENCEVERIFY), script[len(script)-1])
}
