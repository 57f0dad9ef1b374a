package wtclient

import (
	"net"
	"testing"
	"time"

	"github.com/breez/lnwatchtower/brontide"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/breez/lnwatchtower/watchtower/wtdb"
	"github.com/breez/lnwatchtower/watchtower/wtwire"
	"github.com/btcsuite/btcd/btcec"
	"github.com/go-errors/errors"
	"github.com/stretchr/testify/require"
)

// errDialerExhausted is returned by pipeDialer once its single
// pre-connected net.Conn has already been handed out.
var errDialerExhausted = errors.New("wtclient: test dialer exhausted")

// pipeDialer hands out a single pre-connected net.Conn, standing in for a
// real transport dial in tests that drive both ends of a brontide
// connection in-process.
type pipeDialer struct {
	conn net.Conn
	used bool
}

func (d *pipeDialer) Dial(network, addr string) (net.Conn, error) {
	if d.used {
		return nil, errDialerExhausted
	}
	d.used = true
	return d.conn, nil
}

// runFakeTower drives the responder side of one brontide connection,
// answering Init, CreateSession and StateUpdate requests until the
// connection is closed or a DeleteSession is received.
func runFakeTower(t *testing.T, conn *brontide.Conn, sessionID [33]byte) {
	t.Helper()

	readMsg := func() (wtwire.Message, error) {
		raw, err := conn.ReadNextMessage()
		if err != nil {
			return nil, err
		}
		return wtwire.ReadMessage(raw)
	}

	writeMsg := func(msg wtwire.Message) error {
		raw, err := wtwire.WriteMessage(msg)
		if err != nil {
			return err
		}
		_, err = conn.Write(raw)
		return err
	}

	msg, err := readMsg()
	if err != nil {
		return
	}
	if _, ok := msg.(*wtwire.Init); !ok {
		t.Errorf("expected Init, got %T", msg)
		return
	}
	if err := writeMsg(wtwire.NewInitMessage(chainHash, lnwire.NewRawFeatureVector())); err != nil {
		return
	}

	msg, err = readMsg()
	if err != nil {
		return
	}
	if _, ok := msg.(*wtwire.CreateSession); !ok {
		t.Errorf("expected CreateSession, got %T", msg)
		return
	}
	if err := writeMsg(&wtwire.CreateSessionReply{
		Status:    wtwire.CodeOK,
		SessionID: sessionID,
	}); err != nil {
		return
	}

	var lastApplied uint16
	for {
		msg, err = readMsg()
		if err != nil {
			return
		}

		switch m := msg.(type) {
		case *wtwire.StateUpdate:
			lastApplied = m.Seq
			if err := writeMsg(&wtwire.StateUpdateReply{
				Status:      wtwire.CodeUpdateOK,
				LastApplied: lastApplied,
			}); err != nil {
				return
			}
		case *wtwire.DeleteSession:
			writeMsg(&wtwire.DeleteSessionReply{})
			return
		default:
			t.Errorf("unexpected message %T", msg)
			return
		}
	}
}

// towerResult carries the outcome of the tower's responder handshake.
type towerResult struct {
	conn *brontide.Conn
	err  error
}

// newTowerPipe returns the client end of an in-memory connection, not yet
// handshaked, for the client's own brontide.Dial to run the initiator
// side over, along with both static keys. The tower end runs the Noise_XK
// responder handshake in the background and delivers its *brontide.Conn
// (or the handshake error) on the returned channel.
func newTowerPipe(t *testing.T) (clientPriv *btcec.PrivateKey,
	towerPriv *btcec.PrivateKey, clientConn net.Conn,
	towerCh <-chan towerResult) {

	t.Helper()

	var err error
	clientPriv, err = btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	towerPriv, err = btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	clientRaw, towerRaw := net.Pipe()

	ch := make(chan towerResult, 1)
	go func() {
		conn, err := brontide.NewInboundConn(towerRaw, towerPriv)
		ch <- towerResult{conn, err}
	}()

	return clientPriv, towerPriv, clientRaw, ch
}

func testRecord(t *testing.T) *CommitmentRecord {
	t.Helper()

	delayPriv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	revokePriv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	var breachTxid [32]byte
	breachTxid[0] = 0x7a

	return &CommitmentRecord{
		BreachTxid:       breachTxid,
		RevocationPubKey: revokePriv.PubKey(),
		LocalDelayPubKey: delayPriv.PubKey(),
		CSVDelay:         144,
		SweepAddress:     []byte{0xaa, 0xbb, 0xcc},
	}
}

func TestClientPushPendingDeliversReadyRecord(t *testing.T) {
	clientPriv, towerPriv, clientConn, towerCh := newTowerPipe(t)

	var sessionID [33]byte
	copy(sessionID[:], towerPriv.PubKey().SerializeCompressed())

	towerDone := make(chan struct{})
	go func() {
		defer close(towerDone)
		res := <-towerCh
		if res.err != nil {
			t.Errorf("tower handshake failed: %v", res.err)
			return
		}
		runFakeTower(t, res.conn, sessionID)
	}()

	capture := NewCapture()
	capture.ready = append(capture.ready, testRecord(t))

	store, err := wtdb.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	dialer := &pipeDialer{conn: clientConn}

	client := NewClient(Config{
		LocalPriv: clientPriv,
		TowerAddr: &lnwire.NetAddress{
			IdentityKey: towerPriv.PubKey(),
			Address:     &net.TCPAddr{},
		},
		Dialer:               dialer,
		BlobType:             blob.TypeAltruistCommit,
		MaxUpdates:           10,
		SweepFeeRateSatPerKW: 1000,
		Capture:              capture,
		LocalStore:           store,
		RetryBackoff:         []time.Duration{time.Millisecond},
	})

	require.NoError(t, client.PushPending())

	hints, err := store.ListHints()
	require.NoError(t, err)
	require.Empty(t, hints, "delivered blob should not remain persisted locally")

	client.Stop()

	select {
	case <-towerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("fake tower never observed DeleteSession")
	}
}

func TestClientFallsBackToLocalStoreOnDialFailure(t *testing.T) {
	clientPriv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	towerPriv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	capture := NewCapture()
	capture.ready = append(capture.ready, testRecord(t))

	store, err := wtdb.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	client := NewClient(Config{
		LocalPriv: clientPriv,
		TowerAddr: &lnwire.NetAddress{
			IdentityKey: towerPriv.PubKey(),
			Address:     &net.TCPAddr{},
		},
		Dialer:               &pipeDialer{used: true}, // always errors
		BlobType:             blob.TypeAltruistCommit,
		MaxUpdates:           10,
		SweepFeeRateSatPerKW: 1000,
		Capture:              capture,
		LocalStore:           store,
		RetryBackoff:         []time.Duration{time.Millisecond, time.Millisecond},
	})

	err = client.PushPending()
	require.Error(t, err)

	hints, err := store.ListHints()
	require.NoError(t, err)
	require.Len(t, hints, 1)
}
