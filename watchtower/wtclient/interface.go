package wtclient

import (
	"net"

	"github.com/breez/lnwatchtower/brontide"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

// ChannelKeys describes the per-channel key material the bridge needs in
// order to build a JusticeKit for a revoked commitment, and the
// destination the swept funds should go to. The Lightning core owns
// these values; the bridge only ever sees public material.
type ChannelKeys struct {
	// RevocationPubKey is the revoked commitment's revocation pubkey.
	RevocationPubKey *btcec.PublicKey

	// LocalDelayPubKey is the revoked commitment's to-local delayed
	// pubkey.
	LocalDelayPubKey *btcec.PublicKey

	// SweepAddress is the destination script swept funds should be
	// paid to, as configured via watchtower.sweep_address.
	SweepAddress []byte
}

// SignaturesBundle carries the justice signatures produced by the
// Lightning core's local signing path for one revoked commitment.
type SignaturesBundle struct {
	// ToLocalSig sweeps the to-local output via the revocation path.
	ToLocalSig lnwire.Sig

	// ToRemoteSig sweeps the counterparty's to-remote output, when
	// present.
	ToRemoteSig lnwire.Sig

	// HasToRemote reports whether ToRemoteSig (and the channel's
	// to-remote pubkey) is populated.
	HasToRemote bool

	// ToRemotePubKey is the counterparty's to-remote pubkey, valid only
	// when HasToRemote is true.
	ToRemotePubKey *btcec.PublicKey
}

// ChannelSource is the inbound interface the Lightning core drives: the
// bridge never polls for channel state, it is told about it.
type ChannelSource interface {
	// RegisterChannel initializes capture state for a channel about to
	// be monitored, caching its key material.
	RegisterChannel(chanID lnwire.ChannelID, keys ChannelKeys)

	// OnChannelUpdate notifies the bridge of a new counterparty
	// commitment. sigs and revocationSecretKnown may arrive piecemeal:
	// a commitment observed via its revocation secret but without
	// signatures yet is held pending until a later call supplies them.
	//
	// toLocalScriptHash is the 32-byte P2WSH hash of the to-local
	// output as it actually appears on the counterparty's commitment
	// transaction; the core does not expose the negotiated CSV delay
	// directly, so the bridge recovers it by brute-force matching
	// candidate witness scripts against this hash.
	OnChannelUpdate(chanID lnwire.ChannelID, breachTxid [32]byte,
		commitHeight uint64, toLocalScriptHash [32]byte,
		sigs *SignaturesBundle, revocationSecretKnown bool)

	// OnChannelClosed drops any pending, incomplete records held for
	// chanID.
	OnChannelClosed(chanID lnwire.ChannelID)
}

// JusticeSigner abstracts the Lightning core's local-justice-tx signing
// path. The bridge never handles private keys directly; it asks the
// core to sign on its behalf.
type JusticeSigner interface {
	// SignJusticeTx produces the to-local and, when applicable,
	// to-remote signatures needed to sweep a revoked commitment's
	// outputs.
	SignJusticeTx(chanID lnwire.ChannelID, breachTxid [32]byte,
		commitHeight uint64) (*SignaturesBundle, error)
}

// KeySource abstracts access to the bridge's own static identity keypair,
// used for the brontide handshake. It hands out the private key itself.
type KeySource interface {
	// LocalIdentityKey returns the bridge's static secp256k1 keypair.
	LocalIdentityKey() (*btcec.PrivateKey, error)
}

// Dial connects to addr over the named network and returns the raw
// connection, before any brontide handshake has taken place.
type Dial func(network, addr string) (net.Conn, error)

// AuthDialer establishes an authenticated, encrypted brontide connection
// to a tower, optionally routed through a Tor SOCKS dialer.
type AuthDialer func(localPriv *btcec.PrivateKey, netAddr *lnwire.NetAddress,
	dialer Dial) (*brontide.Conn, error)

// AuthDial is the bridge's default AuthDialer, performing a direct
// brontide handshake over whatever connection dialer produces.
func AuthDial(localPriv *btcec.PrivateKey, netAddr *lnwire.NetAddress,
	dialer Dial) (*brontide.Conn, error) {

	return brontide.Dial(localPriv, netAddr.Address.String(),
		netAddr.IdentityKey, dialer)
}
