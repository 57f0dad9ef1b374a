package blob

import (
	"github.com/breez/lnwatchtower/input"
	"github.com/btcsuite/btcd/btcec"
)

// CommitToLocalWitnessScript reconstructs the to-local revocation/delay
// witness script from this kit's fields, the same script a real justice
// transaction's input would need to satisfy.
func (b *JusticeKit) CommitToLocalWitnessScript() ([]byte, error) {
	revPubKey, err := btcec.ParsePubKey(b.RevocationPubKey[:], btcec.S256())
	if err != nil {
		return nil, err
	}
	delayPubKey, err := btcec.ParsePubKey(b.LocalDelayPubKey[:], btcec.S256())
	if err != nil {
		return nil, err
	}

	return input.CommitScriptToSelf(b.CSVDelay, delayPubKey, revPubKey)
}

// CommitToLocalRevokeWitnessStack returns the witness stack spending the
// to-local output via the revocation path: <sig> <1>.
func (b *JusticeKit) CommitToLocalRevokeWitnessStack() ([][]byte, error) {
	sigWithHashType := append(b.CommitToLocalSig[:], byte(input.SigHashAllByte))

	return [][]byte{sigWithHashType, {1}}, nil
}

// CommitToRemoteWitnessScript returns the witness script (or, for legacy
// channels, simply the serialized pubkey) required to spend the
// counterparty's to-remote output.
func (b *JusticeKit) CommitToRemoteWitnessScript() ([]byte, error) {
	if !b.HasCommitToRemoteOutput() {
		return nil, ErrNoCommitToRemoteOutput
	}

	pubKey, err := btcec.ParsePubKey(b.CommitToRemotePubKey[:], btcec.S256())
	if err != nil {
		return nil, ErrNoCommitToRemoteOutput
	}

	if b.BlobType&FlagAnchorChannel != 0 {
		return input.CommitScriptToRemoteConfirmed(pubKey)
	}

	return pubKey.SerializeCompressed(), nil
}

// CommitToRemoteWitnessStack returns the witness stack spending the
// to-remote output: a single signature.
func (b *JusticeKit) CommitToRemoteWitnessStack() ([][]byte, error) {
	if !b.HasCommitToRemoteOutput() {
		return nil, ErrNoCommitToRemoteOutput
	}

	sigWithHashType := append(b.CommitToRemoteSig[:], byte(input.SigHashAllByte))

	return [][]byte{sigWithHashType}, nil
}
