package wtwire

import (
	"io"

	"github.com/breez/lnwatchtower/lnwire"
)

// Init is the first message exchanged in both directions immediately
// after the brontide handshake completes. Each side must receive its
// peer's Init before sending anything else; a ChainHash mismatch is
// fatal.
type Init struct {
	// ChainHash identifies the chain the sender believes the session
	// applies to.
	ChainHash [32]byte

	// Features carries the sender's feature bits, following the "it's
	// OK to be odd" BOLT-09 convention: unknown odd bits are ignored,
	// unknown even bits are fatal.
	Features *lnwire.RawFeatureVector
}

// NewInitMessage constructs an Init for the given chain hash and feature
// set.
func NewInitMessage(chainHash [32]byte, features *lnwire.RawFeatureVector) *Init {
	if features == nil {
		features = lnwire.NewRawFeatureVector()
	}
	return &Init{
		ChainHash: chainHash,
		Features:  features,
	}
}

func (msg *Init) Encode(w io.Writer) error {
	if _, err := w.Write(msg.ChainHash[:]); err != nil {
		return err
	}
	return msg.Features.Encode(w)
}

func (msg *Init) Decode(r io.Reader) error {
	if _, err := io.ReadFull(r, msg.ChainHash[:]); err != nil {
		return err
	}

	msg.Features = lnwire.NewRawFeatureVector()
	return msg.Features.Decode(r)
}

func (msg *Init) MsgType() MessageType {
	return MsgInit
}

// UnknownRequiredFeatures returns the set of feature bits in other that
// are both even (required) and not present in msg's own feature vector,
// i.e. features the peer demands that this side does not understand.
// Only bits 0 through 255 are examined; higher bits are never reported.
func (msg *Init) UnknownRequiredFeatures(other *lnwire.RawFeatureVector) []lnwire.FeatureBit {
	var unknown []lnwire.FeatureBit
	for bit := lnwire.FeatureBit(0); bit < 256; bit++ {
		if bit%2 != 0 {
			continue
		}
		if other.IsSet(bit) && !msg.Features.IsSet(bit) {
			unknown = append(unknown, bit)
		}
	}
	return unknown
}
