// Package wtwire implements the small message set exchanged between this
// bridge and a remote watchtower over an established brontide connection:
// Init, CreateSession, StateUpdate, and DeleteSession, each with their
// reply.
package wtwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-errors/errors"
)

// MessageType is the unique 2-byte big-endian code identifying a wtwire
// message.
type MessageType uint16

const (
	MsgInit               MessageType = 600
	MsgCreateSession      MessageType = 602
	MsgCreateSessionReply MessageType = 603
	MsgStateUpdate        MessageType = 604
	MsgStateUpdateReply   MessageType = 605
	MsgDeleteSession      MessageType = 606
	MsgDeleteSessionReply MessageType = 607
)

// String returns a human-readable name for a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgInit:
		return "Init"
	case MsgCreateSession:
		return "CreateSession"
	case MsgCreateSessionReply:
		return "CreateSessionReply"
	case MsgStateUpdate:
		return "StateUpdate"
	case MsgStateUpdateReply:
		return "StateUpdateReply"
	case MsgDeleteSession:
		return "DeleteSession"
	case MsgDeleteSessionReply:
		return "DeleteSessionReply"
	default:
		return fmt.Sprintf("<unknown %d>", uint16(t))
	}
}

// maxMessagePayload mirrors the brontide transport's maximum plaintext
// message size.
const maxMessagePayload = 65535

var (
	// ErrMsgTooLarge is returned when a message's encoded payload would
	// exceed maxMessagePayload.
	ErrMsgTooLarge = errors.New("wtwire: message exceeds max payload size")

	// ErrUnknownMessageType is returned by ReadMessage when the 2-byte
	// type prefix does not match any known wtwire message.
	ErrUnknownMessageType = errors.New("wtwire: unknown message type")
)

// Message is the interface a wtwire message type must satisfy.
type Message interface {
	// Decode reads the message's body (everything after the 2-byte type
	// prefix) from r.
	Decode(r io.Reader) error

	// Encode writes the message's body to w, not including the type
	// prefix.
	Encode(w io.Writer) error

	// MsgType returns the message's wire type code.
	MsgType() MessageType
}

// WriteMessage serializes msg as type-prefixed bytes suitable for handing
// directly to a brontide connection's Write.
func WriteMessage(msg Message) ([]byte, error) {
	var b bytes.Buffer

	var typeBytes [2]byte
	binary.BigEndian.PutUint16(typeBytes[:], uint16(msg.MsgType()))
	if _, err := b.Write(typeBytes[:]); err != nil {
		return nil, err
	}

	if err := msg.Encode(&b); err != nil {
		return nil, err
	}

	if b.Len() > maxMessagePayload {
		return nil, ErrMsgTooLarge
	}

	return b.Bytes(), nil
}

// ReadMessage parses a type-prefixed byte slice, as returned by a
// brontide connection's ReadNextMessage, into a concrete Message.
func ReadMessage(b []byte) (Message, error) {
	if len(b) < 2 {
		return nil, io.ErrUnexpectedEOF
	}

	msgType := MessageType(binary.BigEndian.Uint16(b[:2]))

	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}

	if err := msg.Decode(bytes.NewReader(b[2:])); err != nil {
		return nil, err
	}

	return msg, nil
}

func makeEmptyMessage(msgType MessageType) (Message, error) {
	switch msgType {
	case MsgInit:
		return &Init{}, nil
	case MsgCreateSession:
		return &CreateSession{}, nil
	case MsgCreateSessionReply:
		return &CreateSessionReply{}, nil
	case MsgStateUpdate:
		return &StateUpdate{}, nil
	case MsgStateUpdateReply:
		return &StateUpdateReply{}, nil
	case MsgDeleteSession:
		return &DeleteSession{}, nil
	case MsgDeleteSessionReply:
		return &DeleteSessionReply{}, nil
	default:
		return nil, ErrUnknownMessageType
	}
}
