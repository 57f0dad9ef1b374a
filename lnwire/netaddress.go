package lnwire

import (
	"net"

	"github.com/btcsuite/btcd/btcec"
)

// NetAddress represents a network address pinned to a specific peer
// identity, in the same spirit as the teacher's own lnwire.NetAddress: a
// pubkey paired with the address used to reach it. The watchtower bridge
// uses this to describe its single configured tower (§6, watchtower.tower_uri).
type NetAddress struct {
	// IdentityKey is the long-term static public key of the tower.
	IdentityKey *btcec.PublicKey

	// Address is the host:port (or onion:port) the tower is reachable at.
	Address net.Addr
}

// String returns the "pubkey@host:port" canonical representation used by
// the watchtower.tower_uri configuration knob.
func (n *NetAddress) String() string {
	var pubKeyHex string
	if n.IdentityKey != nil {
		pubKeyHex = hexEncode(n.IdentityKey.SerializeCompressed())
	}

	addr := ""
	if n.Address != nil {
		addr = n.Address.String()
	}

	return pubKeyHex + "@" + addr
}
