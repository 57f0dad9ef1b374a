package wtclient

import (
	"github.com/breez/lnwatchtower/watchtower/blob"
)

// buildJusticeKit implements C2: it maps one fully-populated
// CommitmentRecord captured from the Lightning core into the fixed
// JusticeKitV0 plaintext layout a real LND watchtower expects.
func buildJusticeKit(rec *CommitmentRecord, blobType blob.Type) (*blob.JusticeKit, error) {
	kit := &blob.JusticeKit{
		BlobType:          blobType,
		SweepAddress:      rec.SweepAddress,
		CSVDelay:          rec.CSVDelay,
		CommitToLocalSig:  rec.ToLocalSig,
		CommitToRemoteSig: rec.ToRemoteSig,
	}

	copy(kit.RevocationPubKey[:], rec.RevocationPubKey.SerializeCompressed())
	copy(kit.LocalDelayPubKey[:], rec.LocalDelayPubKey.SerializeCompressed())

	if rec.HasToRemote && rec.ToRemotePubKey != nil {
		copy(kit.CommitToRemotePubKey[:], rec.ToRemotePubKey.SerializeCompressed())
	}

	return kit, nil
}
