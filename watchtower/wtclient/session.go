package wtclient

import (
	"github.com/breez/lnwatchtower/brontide"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/breez/lnwatchtower/watchtower/wtwire"
)

// chainHash identifies the chain this bridge's sessions operate on. It
// is compared against the tower's own Init; a mismatch is fatal.
var chainHash [32]byte

// SetChainHash overrides the chain hash compared during Init exchange,
// normally set once at startup from the node's configured network.
func SetChainHash(h [32]byte) {
	chainHash = h
}

// Session wraps one brontide connection to a tower plus the session
// bookkeeping (sequence numbers, session identifier, max updates) the
// wire protocol requires on top of it.
type Session struct {
	conn *brontide.Conn

	sessionID  [33]byte
	maxUpdates uint16

	seq         uint16
	lastApplied uint16
}

// OpenSession performs the Init exchange and CreateSession handshake
// over an already-established brontide connection, returning a Session
// ready to carry StateUpdates.
func OpenSession(conn *brontide.Conn, blobType blob.Type, maxUpdates uint16,
	sweepFeeRateSatPerKW uint32) (*Session, error) {

	if err := exchangeInit(conn); err != nil {
		return nil, err
	}

	createMsg := &wtwire.CreateSession{
		BlobType:             blobType,
		MaxUpdates:           maxUpdates,
		SweepFeeRateSatPerKW: sweepFeeRateSatPerKW,
	}

	raw, err := wtwire.WriteMessage(createMsg)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(raw); err != nil {
		return nil, err
	}

	replyRaw, err := conn.ReadNextMessage()
	if err != nil {
		return nil, err
	}
	reply, err := wtwire.ReadMessage(replyRaw)
	if err != nil {
		return nil, err
	}

	createReply, ok := reply.(*wtwire.CreateSessionReply)
	if !ok {
		return nil, ErrProtocolError
	}

	switch createReply.Status {
	case wtwire.CodeOK, wtwire.CodeAlreadyExists:
	case wtwire.CodeTemporaryFailure:
		return nil, ErrTemporaryFailure
	case wtwire.CodePermanentFailure:
		return nil, ErrPermanentFailure
	default:
		return nil, ErrProtocolError
	}

	return &Session{
		conn:       conn,
		sessionID:  createReply.SessionID,
		maxUpdates: maxUpdates,
	}, nil
}

func exchangeInit(conn *brontide.Conn) error {
	localInit := wtwire.NewInitMessage(chainHash, lnwire.NewRawFeatureVector())

	raw, err := wtwire.WriteMessage(localInit)
	if err != nil {
		return err
	}
	if _, err := conn.Write(raw); err != nil {
		return err
	}

	peerRaw, err := conn.ReadNextMessage()
	if err != nil {
		return err
	}
	peerMsg, err := wtwire.ReadMessage(peerRaw)
	if err != nil {
		return err
	}

	peerInit, ok := peerMsg.(*wtwire.Init)
	if !ok {
		return ErrProtocolError
	}
	if peerInit.ChainHash != chainHash {
		return ErrChainHashMismatch
	}
	if unknown := localInit.UnknownRequiredFeatures(peerInit.Features); len(unknown) > 0 {
		return ErrUnknownRequiredFeature
	}

	return nil
}

// Exhausted reports whether this session has reached its MaxUpdates and
// must be replaced.
func (s *Session) Exhausted() bool {
	return s.seq >= s.maxUpdates
}

// PushBlob sends one encrypted blob as a StateUpdate and waits for the
// tower's reply, enforcing the monotone last_applied invariant.
func (s *Session) PushBlob(hint blob.BreachHint, encryptedBlob []byte,
	isComplete bool) error {

	s.seq++

	var payload [blob.CiphertextSize]byte
	copy(payload[:], encryptedBlob)

	msg := &wtwire.StateUpdate{
		Seq:           s.seq,
		LastApplied:   s.lastApplied,
		IsComplete:    isComplete,
		Hint:          hint,
		EncryptedBlob: payload,
	}

	raw, err := wtwire.WriteMessage(msg)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(raw); err != nil {
		return err
	}

	replyRaw, err := s.conn.ReadNextMessage()
	if err != nil {
		return err
	}
	replyMsg, err := wtwire.ReadMessage(replyRaw)
	if err != nil {
		return err
	}

	reply, ok := replyMsg.(*wtwire.StateUpdateReply)
	if !ok {
		return ErrProtocolError
	}

	if reply.LastApplied < s.lastApplied {
		return ErrProtocolError
	}

	switch reply.Status {
	case wtwire.CodeUpdateOK:
		s.lastApplied = reply.LastApplied
		return nil
	case wtwire.CodeClientBehind:
		return ErrClientBehind
	case wtwire.CodeSessionConsumed:
		return ErrSessionConsumed
	default:
		return ErrProtocolError
	}
}

// Close attempts a clean DeleteSession teardown before closing the
// underlying connection. Failures to exchange DeleteSession are not
// fatal; the socket is dropped regardless.
func (s *Session) Close() error {
	raw, err := wtwire.WriteMessage(&wtwire.DeleteSession{})
	if err == nil {
		if _, werr := s.conn.Write(raw); werr == nil {
			s.conn.ReadNextMessage()
		}
	}

	return s.conn.Close()
}
