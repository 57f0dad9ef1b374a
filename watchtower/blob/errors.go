package blob

import "github.com/go-errors/errors"

var (
	// ErrUnknownBlobType is returned when an encrypt or decrypt call is
	// given a blob.Type this package does not know how to size or
	// build: anything other than TypeAltruistCommit or TypeRewardCommit.
	ErrUnknownBlobType = errors.New("unknown blob type")

	// ErrSweepAddressToLong is returned when a JusticeKit's sweep
	// address exceeds MaxSweepAddrSize.
	ErrSweepAddressToLong = errors.New("sweep address exceeds max " +
		"allowed length")

	// ErrNoCommitToRemoteOutput is returned when the to-remote witness
	// script or stack is requested for a JusticeKit whose
	// CommitToRemotePubKey is not a valid compressed pubkey.
	ErrNoCommitToRemoteOutput = errors.New("blob does not have a " +
		"commit to-remote output")

	// ErrInvalidPubKeyPrefix is returned by JusticeKit.Encrypt (C2) when
	// the revocation or local-delay pubkey's first byte is neither 0x02
	// nor 0x03.
	ErrInvalidPubKeyPrefix = errors.New("compressed pubkey must start " +
		"with 0x02 or 0x03")

	// ErrInvalidRecord is returned by Decrypt when the decrypted
	// plaintext is not exactly PlaintextSize bytes long.
	ErrInvalidRecord = errors.New("commitment record failed validation")

	// ErrCiphertextTooShort is returned by Decrypt when the supplied
	// ciphertext is smaller than nonce+tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short to " +
		"contain a valid blob")

	// ErrAuthFailure is returned by Decrypt when the Poly1305 tag fails
	// to validate.
	ErrAuthFailure = errors.New("authentication failed decrypting blob")
)
