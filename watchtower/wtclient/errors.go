package wtclient

import "github.com/go-errors/errors"

var (
	// errCSVDelayNotFound is returned when no candidate delay in
	// 1..maxCSVDelayScan reproduces the observed to-local witness
	// script hash.
	errCSVDelayNotFound = errors.New("wtclient: csv delay not found " +
		"within scan range")

	// ErrNoTowerConfigured is returned when push_pending is invoked
	// before register_tower.
	ErrNoTowerConfigured = errors.New("wtclient: no tower configured")

	// ErrProtocolError is returned when the tower violates the wire
	// protocol's ordering guarantees, e.g. a non-monotone last_applied.
	ErrProtocolError = errors.New("wtclient: tower violated protocol " +
		"ordering guarantees")

	// ErrChainHashMismatch is returned when the tower's Init advertises
	// a different chain than this bridge's.
	ErrChainHashMismatch = errors.New("wtclient: chain hash mismatch " +
		"with tower")

	// ErrUnknownRequiredFeature is returned when the tower's Init sets
	// a required (even) feature bit this bridge does not understand.
	ErrUnknownRequiredFeature = errors.New("wtclient: tower requires " +
		"an unknown feature bit")

	// ErrTemporaryFailure is returned when CreateSession replies with
	// CodeTemporaryFailure: the tower is at capacity. The same session
	// parameters may be retried later.
	ErrTemporaryFailure = errors.New("wtclient: tower temporarily " +
		"unable to create session")

	// ErrPermanentFailure is returned when CreateSession replies with
	// CodePermanentFailure: the tower rejected the proposed session
	// parameters outright. The same parameters must not be retried
	// without operator action.
	ErrPermanentFailure = errors.New("wtclient: tower permanently " +
		"rejected session parameters")

	// ErrClientBehind is returned when a StateUpdateReply carries
	// CodeClientBehind: the tower's view of last_applied is ahead of
	// this bridge's, meaning its local session state must be resynced.
	ErrClientBehind = errors.New("wtclient: tower reports client is " +
		"behind, resync required")

	// ErrSessionConsumed is returned when a StateUpdateReply carries
	// CodeSessionConsumed: the session's max_updates has been reached
	// and a new session must be created.
	ErrSessionConsumed = errors.New("wtclient: session consumed, new " +
		"session required")
)
