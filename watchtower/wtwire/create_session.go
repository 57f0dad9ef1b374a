package wtwire

import (
	"encoding/binary"
	"io"

	"github.com/breez/lnwatchtower/watchtower/blob"
)

// CreateSession is sent by the initiator to propose a new session's
// parameters.
type CreateSession struct {
	// BlobType selects the JusticeKit policy variant this session's
	// updates will use.
	BlobType blob.Type

	// MaxUpdates bounds the number of StateUpdates the tower will
	// accept under this session before it must be replaced.
	MaxUpdates uint16

	// RewardBase is the fixed reward, in satoshis, paid to the tower
	// on a successful justice sweep. Always zero for altruist sessions.
	RewardBase uint32

	// RewardRate is the proportional reward rate, in parts per million,
	// paid to the tower. Always zero for altruist sessions.
	RewardRate uint32

	// SweepFeeRateSatPerKW is the fee rate the tower should use when
	// broadcasting the justice transaction.
	SweepFeeRateSatPerKW uint32
}

func (msg *CreateSession) Encode(w io.Writer) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(msg.BlobType))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	binary.BigEndian.PutUint16(buf[:], msg.MaxUpdates)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	var buf4 [4]byte
	binary.BigEndian.PutUint32(buf4[:], msg.RewardBase)
	if _, err := w.Write(buf4[:]); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(buf4[:], msg.RewardRate)
	if _, err := w.Write(buf4[:]); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(buf4[:], msg.SweepFeeRateSatPerKW)
	_, err := w.Write(buf4[:])
	return err
}

func (msg *CreateSession) Decode(r io.Reader) error {
	var buf2 [2]byte

	if _, err := io.ReadFull(r, buf2[:]); err != nil {
		return err
	}
	msg.BlobType = blob.Type(binary.BigEndian.Uint16(buf2[:]))

	if _, err := io.ReadFull(r, buf2[:]); err != nil {
		return err
	}
	msg.MaxUpdates = binary.BigEndian.Uint16(buf2[:])

	var buf4 [4]byte

	if _, err := io.ReadFull(r, buf4[:]); err != nil {
		return err
	}
	msg.RewardBase = binary.BigEndian.Uint32(buf4[:])

	if _, err := io.ReadFull(r, buf4[:]); err != nil {
		return err
	}
	msg.RewardRate = binary.BigEndian.Uint32(buf4[:])

	if _, err := io.ReadFull(r, buf4[:]); err != nil {
		return err
	}
	msg.SweepFeeRateSatPerKW = binary.BigEndian.Uint32(buf4[:])

	return nil
}

func (msg *CreateSession) MsgType() MessageType {
	return MsgCreateSession
}

// CreateSessionCode enumerates the status byte a tower replies with in a
// CreateSessionReply.
type CreateSessionCode uint8

const (
	// CodeOK indicates the session was created (or, for AlreadyExists,
	// resumed) successfully.
	CodeOK CreateSessionCode = 0

	// CodeTemporaryFailure indicates the tower is at capacity; the
	// initiator may retry later.
	CodeTemporaryFailure CreateSessionCode = 40

	// CodePermanentFailure indicates the tower rejected the proposed
	// session parameters outright.
	CodePermanentFailure CreateSessionCode = 41

	// CodeAlreadyExists indicates a session with these parameters
	// already exists and has been resumed.
	CodeAlreadyExists CreateSessionCode = 42
)

// sessionIDSize is the fixed size, in bytes, of a tower-assigned session
// identifier (a compressed secp256k1 pubkey).
const sessionIDSize = 33

// CreateSessionReply is the tower's response to a CreateSession request.
type CreateSessionReply struct {
	// Status reports the outcome of the request.
	Status CreateSessionCode

	// SessionID is populated when Status is CodeOK or CodeAlreadyExists.
	SessionID [sessionIDSize]byte
}

func (msg *CreateSessionReply) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{byte(msg.Status)}); err != nil {
		return err
	}

	if msg.Status == CodeOK || msg.Status == CodeAlreadyExists {
		if _, err := w.Write(msg.SessionID[:]); err != nil {
			return err
		}
	}

	return nil
}

func (msg *CreateSessionReply) Decode(r io.Reader) error {
	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return err
	}
	msg.Status = CreateSessionCode(status[0])

	if msg.Status == CodeOK || msg.Status == CodeAlreadyExists {
		if _, err := io.ReadFull(r, msg.SessionID[:]); err != nil {
			return err
		}
	}

	return nil
}

func (msg *CreateSessionReply) MsgType() MessageType {
	return MsgCreateSessionReply
}
