package wtwire

import (
	"testing"

	"github.com/breez/lnwatchtower/lnwire"
	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/stretchr/testify/require"
)

func TestWriteReadMessageInit(t *testing.T) {
	features := lnwire.NewRawFeatureVector(lnwire.GossipQueriesOptional)

	var chainHash [32]byte
	chainHash[0] = 0xaa

	msg := NewInitMessage(chainHash, features)

	raw, err := WriteMessage(msg)
	require.NoError(t, err)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*Init)
	require.True(t, ok)
	require.Equal(t, chainHash, got.ChainHash)
	require.True(t, got.Features.IsSet(lnwire.GossipQueriesOptional))
}

func TestWriteReadMessageCreateSessionRoundTrip(t *testing.T) {
	msg := &CreateSession{
		BlobType:             blob.TypeAltruistCommit,
		MaxUpdates:           8192,
		RewardBase:           0,
		RewardRate:           0,
		SweepFeeRateSatPerKW: 2000,
	}

	raw, err := WriteMessage(msg)
	require.NoError(t, err)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*CreateSession)
	require.True(t, ok)
	require.Equal(t, *msg, *got)
}

func TestWriteReadMessageCreateSessionReply(t *testing.T) {
	reply := &CreateSessionReply{Status: CodeOK}
	reply.SessionID[0] = 0x02
	reply.SessionID[1] = 0x42

	raw, err := WriteMessage(reply)
	require.NoError(t, err)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*CreateSessionReply)
	require.True(t, ok)
	require.Equal(t, *reply, *got)
}

func TestWriteReadMessageCreateSessionReplyFailureOmitsSessionID(t *testing.T) {
	reply := &CreateSessionReply{Status: CodeTemporaryFailure}

	raw, err := WriteMessage(reply)
	require.NoError(t, err)
	require.Len(t, raw, 3)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*CreateSessionReply)
	require.True(t, ok)
	require.Equal(t, CodeTemporaryFailure, got.Status)
}

func TestWriteReadMessageStateUpdate(t *testing.T) {
	msg := &StateUpdate{
		Seq:         1,
		LastApplied: 0,
		IsComplete:  false,
	}
	msg.Hint[0] = 0x11
	msg.EncryptedBlob[0] = 0x22

	raw, err := WriteMessage(msg)
	require.NoError(t, err)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*StateUpdate)
	require.True(t, ok)
	require.Equal(t, *msg, *got)
}

func TestWriteReadMessageStateUpdateReply(t *testing.T) {
	reply := &StateUpdateReply{Status: CodeClientBehind, LastApplied: 7}

	raw, err := WriteMessage(reply)
	require.NoError(t, err)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	got, ok := decoded.(*StateUpdateReply)
	require.True(t, ok)
	require.Equal(t, *reply, *got)
}

func TestWriteReadMessageDeleteSession(t *testing.T) {
	msg := &DeleteSession{}

	raw, err := WriteMessage(msg)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	decoded, err := ReadMessage(raw)
	require.NoError(t, err)

	_, ok := decoded.(*DeleteSession)
	require.True(t, ok)
}

func TestReadMessageUnknownType(t *testing.T) {
	_, err := ReadMessage([]byte{0xff, 0xff})
	require.Equal(t, ErrUnknownMessageType, err)
}

func TestReadMessageTooShort(t *testing.T) {
	_, err := ReadMessage([]byte{0x01})
	require.Error(t, err)
}
