package lnwire

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// SigLen is the fixed length, in bytes, of a raw signature.
const SigLen = 64

// Sig is a fixed-size, wire representation of an ECDSA signature. LND's
// justice-kit wire format carries signatures compact and padded to 64
// bytes rather than DER-encoded, so this type round-trips through
// btcec.Signature rather than storing DER bytes directly.
type Sig [SigLen]byte

// NewSigFromSignature creates a fixed-size Sig from a DER-encoded
// *btcec.Signature by serializing R and S into the low/high halves of the
// array, left-padded with zeroes.
func NewSigFromSignature(sig *btcec.Signature) (Sig, error) {
	var b Sig

	rBytes := sig.R.Bytes()
	sBytes := sig.S.Bytes()

	if len(rBytes) > 32 || len(sBytes) > 32 {
		return b, fmt.Errorf("signature too large: r=%d s=%d bytes",
			len(rBytes), len(sBytes))
	}

	copy(b[32-len(rBytes):32], rBytes)
	copy(b[64-len(sBytes):64], sBytes)

	return b, nil
}

// ToSignature parses the fixed-size Sig back into a *btcec.Signature.
func (s Sig) ToSignature() (*btcec.Signature, error) {
	r := new(big.Int).SetBytes(s[:32])
	sVal := new(big.Int).SetBytes(s[32:])

	return &btcec.Signature{R: r, S: sVal}, nil
}
