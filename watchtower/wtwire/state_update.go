package wtwire

import (
	"encoding/binary"
	"io"

	"github.com/breez/lnwatchtower/watchtower/blob"
)

// StateUpdate delivers one encrypted justice blob under an existing
// session. Seq is monotone per session, starting at 1; LastApplied
// echoes the highest sequence number this side has seen acknowledged so
// far.
type StateUpdate struct {
	// Seq is this update's monotone sequence number within the session.
	Seq uint16

	// LastApplied is the highest sequence number the initiator has seen
	// acknowledged by the tower so far.
	LastApplied uint16

	// IsComplete signals that this is the last update before the
	// initiator goes idle.
	IsComplete bool

	// Hint is the first 16 bytes of the breach transaction's txid,
	// allowing the tower to index this blob for later lookup.
	Hint blob.BreachHint

	// EncryptedBlob is the 314-byte sealed JusticeKit.
	EncryptedBlob [blob.CiphertextSize]byte
}

func (msg *StateUpdate) Encode(w io.Writer) error {
	var buf2 [2]byte

	binary.BigEndian.PutUint16(buf2[:], msg.Seq)
	if _, err := w.Write(buf2[:]); err != nil {
		return err
	}

	binary.BigEndian.PutUint16(buf2[:], msg.LastApplied)
	if _, err := w.Write(buf2[:]); err != nil {
		return err
	}

	var isComplete byte
	if msg.IsComplete {
		isComplete = 1
	}
	if _, err := w.Write([]byte{isComplete}); err != nil {
		return err
	}

	if _, err := w.Write(msg.Hint[:]); err != nil {
		return err
	}

	_, err := w.Write(msg.EncryptedBlob[:])
	return err
}

func (msg *StateUpdate) Decode(r io.Reader) error {
	var buf2 [2]byte

	if _, err := io.ReadFull(r, buf2[:]); err != nil {
		return err
	}
	msg.Seq = binary.BigEndian.Uint16(buf2[:])

	if _, err := io.ReadFull(r, buf2[:]); err != nil {
		return err
	}
	msg.LastApplied = binary.BigEndian.Uint16(buf2[:])

	var isComplete [1]byte
	if _, err := io.ReadFull(r, isComplete[:]); err != nil {
		return err
	}
	msg.IsComplete = isComplete[0] != 0

	if _, err := io.ReadFull(r, msg.Hint[:]); err != nil {
		return err
	}

	_, err := io.ReadFull(r, msg.EncryptedBlob[:])
	return err
}

func (msg *StateUpdate) MsgType() MessageType {
	return MsgStateUpdate
}

// StateUpdateCode enumerates the status byte a tower replies with in a
// StateUpdateReply.
type StateUpdateCode uint8

const (
	// CodeUpdateOK indicates the blob was accepted.
	CodeUpdateOK StateUpdateCode = 0

	// CodeClientBehind indicates the tower's view of LastApplied is
	// ahead of the initiator's; the initiator must resync from its
	// local state.
	CodeClientBehind StateUpdateCode = 50

	// CodeSessionConsumed indicates the session's MaxUpdates has been
	// reached; the initiator must create a new session.
	CodeSessionConsumed StateUpdateCode = 51
)

// StateUpdateReply is the tower's response to a StateUpdate.
type StateUpdateReply struct {
	// Status reports the outcome of the update.
	Status StateUpdateCode

	// LastApplied echoes (or corrects) the highest sequence number the
	// tower has durably applied for this session.
	LastApplied uint16
}

func (msg *StateUpdateReply) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{byte(msg.Status)}); err != nil {
		return err
	}

	var buf2 [2]byte
	binary.BigEndian.PutUint16(buf2[:], msg.LastApplied)
	_, err := w.Write(buf2[:])
	return err
}

func (msg *StateUpdateReply) Decode(r io.Reader) error {
	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return err
	}
	msg.Status = StateUpdateCode(status[0])

	var buf2 [2]byte
	if _, err := io.ReadFull(r, buf2[:]); err != nil {
		return err
	}
	msg.LastApplied = binary.BigEndian.Uint16(buf2[:])

	return nil
}

func (msg *StateUpdateReply) MsgType() MessageType {
	return MsgStateUpdateReply
}
