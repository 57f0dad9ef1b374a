package wtclient

import (
	"crypto/sha256"
	"sync"

	"github.com/breez/lnwatchtower/input"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

// maxCSVDelayScan bounds the brute-force search for a commitment's
// to-local CSV delay: the finite range of values a channel's to_self_delay
// can plausibly have been negotiated to during open (BOLT 2 caps
// to_self_delay at 2016 in practice).
const maxCSVDelayScan = 2016

// CommitmentRecord is one captured, revoked counterparty commitment,
// ready to become a JusticeKit once fully populated.
type CommitmentRecord struct {
	// ChanID identifies the channel this record belongs to.
	ChanID lnwire.ChannelID

	// BreachTxid is the revoked commitment's txid, canonical internal
	// (unreversed) byte order. It doubles as the blob encryption key.
	BreachTxid [32]byte

	// CommitmentNumber is monotone per channel.
	CommitmentNumber uint64

	// RevocationPubKey and LocalDelayPubKey are the revoked
	// commitment's to-local output key material.
	RevocationPubKey *btcec.PublicKey
	LocalDelayPubKey *btcec.PublicKey

	// CSVDelay is recovered by brute force against the to-local
	// witness script, since the core does not expose it directly.
	CSVDelay uint32

	// SweepAddress is the configured destination for swept funds.
	SweepAddress []byte

	// ToLocalSig and ToRemoteSig are produced by the core's
	// local-justice-tx signing path; a record is not export-ready
	// until both the revocation secret has been seen and these are
	// populated (when a to-remote output exists).
	ToLocalSig  lnwire.Sig
	ToRemoteSig lnwire.Sig

	HasToRemote    bool
	ToRemotePubKey *btcec.PublicKey

	revocationSeen bool
	sigsSeen       bool
}

// ready reports whether a record has both seen its revocation secret and
// had its justice signatures populated — the only state in which it may
// be drained for export.
func (r *CommitmentRecord) ready() bool {
	return r.revocationSeen && r.sigsSeen
}

type channelCapture struct {
	keys ChannelKeys

	// pending holds records not yet eligible for export, keyed by
	// commitment number.
	pending map[uint64]*CommitmentRecord
}

// Capture implements C1: it accumulates CommitmentRecords from the
// Lightning core's callbacks, holding ready ones on a plain slice
// guarded by the same mutex used for pending state. The mutex is held
// only long enough to push or drain, per the single-threaded-cooperative
// capture model — there is no separate async hand-off here.
type Capture struct {
	mu       sync.Mutex
	channels map[lnwire.ChannelID]*channelCapture
	ready    []*CommitmentRecord
}

// NewCapture constructs an empty Capture.
func NewCapture() *Capture {
	return &Capture{
		channels: make(map[lnwire.ChannelID]*channelCapture),
	}
}

// RegisterChannel implements ChannelSource.
func (c *Capture) RegisterChannel(chanID lnwire.ChannelID, keys ChannelKeys) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.channels[chanID] = &channelCapture{
		keys:    keys,
		pending: make(map[uint64]*CommitmentRecord),
	}
}

// OnChannelUpdate implements ChannelSource. It is never allowed to
// suspend: any brute-force or derivation work it performs is bounded and
// synchronous.
func (c *Capture) OnChannelUpdate(chanID lnwire.ChannelID, breachTxid [32]byte,
	commitHeight uint64, toLocalScriptHash [32]byte, sigs *SignaturesBundle,
	revocationSecretKnown bool) {

	c.mu.Lock()
	defer c.mu.Unlock()

	chanCap, ok := c.channels[chanID]
	if !ok {
		log.Warnf("channel update for unregistered channel %v", chanID)
		return
	}

	rec, ok := chanCap.pending[commitHeight]
	if !ok {
		csvDelay, err := bruteForceCSVDelay(chanCap.keys.LocalDelayPubKey,
			chanCap.keys.RevocationPubKey, toLocalScriptHash)
		if err != nil {
			log.Warnf("rejecting capture for channel %v height %d: %v",
				chanID, commitHeight, err)
			return
		}

		rec = &CommitmentRecord{
			ChanID:           chanID,
			BreachTxid:       breachTxid,
			CommitmentNumber: commitHeight,
			RevocationPubKey: chanCap.keys.RevocationPubKey,
			LocalDelayPubKey: chanCap.keys.LocalDelayPubKey,
			CSVDelay:         csvDelay,
			SweepAddress:     chanCap.keys.SweepAddress,
		}
		chanCap.pending[commitHeight] = rec
	}

	if revocationSecretKnown {
		rec.revocationSeen = true
	}

	if sigs != nil {
		rec.ToLocalSig = sigs.ToLocalSig
		rec.HasToRemote = sigs.HasToRemote
		if sigs.HasToRemote {
			rec.ToRemoteSig = sigs.ToRemoteSig
			rec.ToRemotePubKey = sigs.ToRemotePubKey
		}
		rec.sigsSeen = true
	}

	if rec.ready() {
		delete(chanCap.pending, commitHeight)
		c.ready = append(c.ready, rec)
	}
}

// OnChannelClosed implements ChannelSource, dropping any incomplete
// records still held for chanID.
func (c *Capture) OnChannelClosed(chanID lnwire.ChannelID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.channels, chanID)
}

// DrainReady returns up to maxCount fully-populated CommitmentRecords,
// removing them from the ready queue. It never blocks: the mutex it
// takes is only ever held briefly by a push or another drain.
func (c *Capture) DrainReady(maxCount int) []*CommitmentRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := maxCount
	if n > len(c.ready) {
		n = len(c.ready)
	}

	records := c.ready[:n]
	c.ready = c.ready[n:]

	return records
}

// Pending reports how many fully-populated records are queued for export
// but have not yet been drained.
func (c *Capture) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.ready)
}

// bruteForceCSVDelay searches delays 1..maxCSVDelayScan, rebuilding the
// BOLT 3 to-local witness script for each candidate, hashing it, and
// comparing against scriptHash — the P2WSH hash actually observed on
// the counterparty's commitment transaction. The core never exposes the
// negotiated CSV delay directly, so this brute force is the only way to
// recover it.
func bruteForceCSVDelay(delayPubKey, revocationPubKey *btcec.PublicKey,
	scriptHash [32]byte) (uint32, error) {

	for delay := uint32(1); delay <= maxCSVDelayScan; delay++ {
		candidate, err := input.CommitScriptToSelf(delay, delayPubKey, revocationPubKey)
		if err != nil {
			continue
		}
		if sha256.Sum256(candidate) == scriptHash {
			return delay, nil
		}
	}

	return 0, errCSVDelayNotFound
}
