package wtwire

import "io"

// DeleteSession requests that the tower tear down the current session.
// It carries no payload.
type DeleteSession struct{}

func (msg *DeleteSession) Encode(w io.Writer) error { return nil }

func (msg *DeleteSession) Decode(r io.Reader) error { return nil }

func (msg *DeleteSession) MsgType() MessageType {
	return MsgDeleteSession
}

// DeleteSessionCode enumerates the status byte a tower replies with in a
// DeleteSessionReply.
type DeleteSessionCode uint8

const (
	// CodeDeleteOK indicates the session was torn down.
	CodeDeleteOK DeleteSessionCode = 0
)

// DeleteSessionReply is the tower's response to a DeleteSession.
type DeleteSessionReply struct {
	Status DeleteSessionCode
}

func (msg *DeleteSessionReply) Encode(w io.Writer) error {
	_, err := w.Write([]byte{byte(msg.Status)})
	return err
}

func (msg *DeleteSessionReply) Decode(r io.Reader) error {
	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return err
	}
	msg.Status = DeleteSessionCode(status[0])
	return nil
}

func (msg *DeleteSessionReply) MsgType() MessageType {
	return MsgDeleteSessionReply
}
