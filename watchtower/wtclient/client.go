package wtclient

import (
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/breez/lnwatchtower/brontide"
	"github.com/breez/lnwatchtower/lnwire"
	"github.com/breez/lnwatchtower/ticker"
	"github.com/breez/lnwatchtower/tor"
	"github.com/breez/lnwatchtower/watchtower/blob"
	"github.com/breez/lnwatchtower/watchtower/wtdb"
	"github.com/btcsuite/btcd/btcec"
)

// defaultSweepInterval is how often Start's background loop calls
// PushPending on its own, independent of any explicit trigger.
const defaultSweepInterval = 30 * time.Second

// defaultBatchSize bounds how many records a single PushPending call
// drains from the capture queue, to keep memory use bounded.
const defaultBatchSize = 64

// defaultRetryBackoff is the delay schedule applied between delivery
// attempts within one PushPending call before giving up and falling
// back to local persistence.
var defaultRetryBackoff = []time.Duration{
	5 * time.Second,
	15 * time.Second,
	45 * time.Second,
}

// Config collects everything the delivery pipeline needs to reach a
// single configured tower.
type Config struct {
	// LocalPriv is this bridge's static identity keypair, used for the
	// brontide handshake.
	LocalPriv *btcec.PrivateKey

	// TowerAddr is the configured tower, per watchtower.tower_uri.
	TowerAddr *lnwire.NetAddress

	// Dialer produces the underlying byte-stream to TowerAddr, either
	// over Tor or plain TCP depending on watchtower.transport.
	Dialer tor.Dialer

	// BlobType selects the JusticeKit policy variant CreateSession
	// proposes. Defaults to blob.TypeAltruistCommit when zero.
	BlobType blob.Type

	// MaxUpdates bounds how many StateUpdates one session will accept.
	MaxUpdates uint16

	// SweepFeeRateSatPerKW is proposed to the tower at CreateSession
	// time, from watchtower.fee_rate_sat_per_kw or a chain estimate.
	SweepFeeRateSatPerKW uint32

	// Capture is the upstream C1 producer this client drains.
	Capture *Capture

	// LocalStore persists blobs the tower could not be reached for.
	LocalStore *wtdb.LocalBlobStore

	// BatchSize overrides defaultBatchSize when non-zero.
	BatchSize int

	// RetryBackoff overrides defaultRetryBackoff when non-nil.
	RetryBackoff []time.Duration

	// SweepTicker drives the background push loop started by
	// Client.Start. Defaults to a ticker.Default at defaultSweepInterval
	// when nil.
	SweepTicker ticker.Ticker
}

// Client implements C6: it drains ready CommitmentRecords, builds and
// encrypts their JusticeKits, and delivers them to the configured tower,
// preferring to resume a persistent session and falling back to local
// disk when the tower cannot be reached.
type Client struct {
	cfg Config

	mu      sync.Mutex
	session *Session
	lastErr error

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewClient constructs a Client for cfg, filling in defaults for any
// zero-valued tunables.
func NewClient(cfg Config) *Client {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.RetryBackoff == nil {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.SweepTicker == nil {
		cfg.SweepTicker = ticker.New(defaultSweepInterval)
	}
	if cfg.BlobType == 0 {
		cfg.BlobType = blob.TypeAltruistCommit
	}
	return &Client{cfg: cfg}
}

// Start begins the background sweep loop, calling PushPending on every
// tick of the configured SweepTicker until Stop is called.
func (c *Client) Start() {
	c.quit = make(chan struct{})
	c.cfg.SweepTicker.Resume()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		for {
			select {
			case <-c.cfg.SweepTicker.Ticks():
				if err := c.PushPending(); err != nil {
					log.Warnf("periodic push failed: %v", err)
				}
			case <-c.quit:
				return
			}
		}
	}()
}

// Stop ends the background sweep loop and tears down any active session,
// finishing the in-flight push (if any) before returning. Any blobs left
// undelivered remain safely queued, either in the capture queue or on
// disk in the local store, for the next PushPending call.
func (c *Client) Stop() {
	if c.quit != nil {
		close(c.quit)
	}
	c.cfg.SweepTicker.Stop()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

// pendingPush is one not-yet-acknowledged blob, either freshly built
// from a drained CommitmentRecord or reloaded from local persistence.
type pendingPush struct {
	hint    blob.BreachHint
	payload []byte
}

// PushPending drains up to the configured batch size of ready records,
// plus any previously-persisted LocalBlobs, and attempts to deliver all
// of it to the tower. It never blocks waiting on the capture queue: if
// nothing is ready, it returns immediately. On delivery failure, every
// undelivered blob is persisted to the local store before returning.
func (c *Client) PushPending() error {
	var items []pendingPush

	// LocalBlobs are preferred over the in-memory queue: a prior
	// failure already queued them here, and they represent the oldest
	// undelivered work.
	hints, err := c.cfg.LocalStore.ListHints()
	if err != nil {
		return err
	}
	for _, hint := range hints {
		payload, err := c.cfg.LocalStore.Get(hint)
		if err != nil {
			continue
		}
		items = append(items, pendingPush{hint: hint, payload: payload})
	}

	records := c.cfg.Capture.DrainReady(c.cfg.BatchSize)
	for _, rec := range records {
		kit, err := buildJusticeKit(rec, c.cfg.BlobType)
		if err != nil {
			log.Warnf("dropping record for channel %v: %v", rec.ChanID, err)
			continue
		}

		encrypted, err := kit.Encrypt(blob.BreachKey(rec.BreachTxid))
		if err != nil {
			log.Warnf("dropping record for channel %v: %v", rec.ChanID, err)
			continue
		}

		hint := blob.NewBreachHint(blob.BreachKey(rec.BreachTxid))
		items = append(items, pendingPush{hint: hint, payload: encrypted})
	}

	if len(items) == 0 {
		c.setLastErr(nil)
		return nil
	}

	var lastErr error
	for attempt := 0; attempt <= len(c.cfg.RetryBackoff); attempt++ {
		lastErr = c.deliverAll(items)
		if lastErr == nil {
			c.setLastErr(nil)
			return nil
		}

		log.Warnf("delivery attempt %d failed: %v", attempt, lastErr)

		// A permanent failure means the tower rejected the session
		// parameters outright; retrying the same parameters cannot
		// help, so stop immediately rather than burning the backoff
		// schedule. This is the one condition the operator surface
		// must be told about explicitly, per the status line's
		// distinct Error state.
		if lastErr == ErrPermanentFailure {
			break
		}

		if attempt < len(c.cfg.RetryBackoff) {
			time.Sleep(c.cfg.RetryBackoff[attempt])
		}
	}

	// Exhausted all retries: persist everything undelivered.
	for _, item := range items {
		if err := c.cfg.LocalStore.Put(item.hint, item.payload); err != nil {
			log.Errorf("failed to persist blob %x: %v", item.hint, err)
		}
	}

	c.setLastErr(lastErr)
	return lastErr
}

func (c *Client) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Client) deliverAll(items []pendingPush) error {

	session, err := c.ensureSession()
	if err != nil {
		return err
	}

	for i, item := range items {
		isComplete := i == len(items)-1

		if session.Exhausted() {
			session.Close()
			c.mu.Lock()
			c.session = nil
			c.mu.Unlock()

			session, err = c.ensureSession()
			if err != nil {
				return err
			}
		}

		if err := session.PushBlob(item.hint, item.payload, isComplete); err != nil {
			session.Close()
			c.mu.Lock()
			c.session = nil
			c.mu.Unlock()

			// CodeSessionConsumed/CodeClientBehind both imply the
			// session needs replacing, not that delivery has
			// fatally failed: open a fresh session and retry this
			// one blob before giving up on the whole batch.
			if err == ErrSessionConsumed || err == ErrClientBehind {
				log.Warnf("resyncing session for blob %x: %v",
					item.hint, err)

				session, err = c.ensureSession()
				if err != nil {
					return err
				}
				if err := session.PushBlob(item.hint, item.payload, isComplete); err != nil {
					session.Close()
					c.mu.Lock()
					c.session = nil
					c.mu.Unlock()
					return err
				}

				c.cfg.LocalStore.Delete(item.hint)
				continue
			}

			return err
		}

		// Successfully delivered: clear any prior local persistence
		// for this hint, it is idempotent if it was never written.
		c.cfg.LocalStore.Delete(item.hint)
	}

	return nil
}

// ensureSession returns the current persistent session if one exists
// and is not exhausted, otherwise opens a new transport and session.
func (c *Client) ensureSession() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && !c.session.Exhausted() {
		return c.session, nil
	}

	if c.cfg.TowerAddr == nil {
		return nil, ErrNoTowerConfigured
	}

	conn, err := brontide.Dial(c.cfg.LocalPriv, c.cfg.TowerAddr.Address.String(),
		c.cfg.TowerAddr.IdentityKey, c.cfg.Dialer.Dial)
	if err != nil {
		return nil, err
	}

	session, err := OpenSession(conn, c.cfg.BlobType, c.cfg.MaxUpdates,
		c.cfg.SweepFeeRateSatPerKW)
	if err != nil {
		conn.Close()
		return nil, err
	}

	c.session = session
	return session, nil
}

// Status names the five states StatusLine reports.
type Status string

const (
	// StatusUnconfigured means no tower has been registered yet.
	StatusUnconfigured Status = "Unconfigured"

	// StatusError means the most recent delivery attempt ended with the
	// tower permanently rejecting the session parameters.
	StatusError Status = "Error"

	// StatusDegraded means the most recent delivery attempt failed with
	// any other error, or at least one blob is sitting in local fallback
	// storage, awaiting the next successful delivery.
	StatusDegraded Status = "Degraded"

	// StatusPending means work is queued (captured but not yet pushed)
	// and no prior attempt has failed.
	StatusPending Status = "Pending"

	// StatusProtected means nothing is waiting to be delivered and the
	// most recent delivery attempt, if any, succeeded. Whether a session
	// is currently open is not considered.
	StatusProtected Status = "Protected"
)

// statusSnapshot reports the client's current delivery state, used for
// the operator-facing status surface.
func (c *Client) statusSnapshot() (Status, *Session, error) {
	c.mu.Lock()
	session, lastErr, configured := c.session, c.lastErr, c.cfg.TowerAddr != nil
	c.mu.Unlock()

	if !configured {
		return StatusUnconfigured, session, lastErr
	}
	if lastErr == ErrPermanentFailure {
		return StatusError, session, lastErr
	}
	if lastErr != nil {
		return StatusDegraded, session, lastErr
	}

	hints, err := c.cfg.LocalStore.ListHints()
	if err == nil && len(hints) > 0 {
		return StatusDegraded, session, lastErr
	}

	if c.cfg.Capture.Pending() > 0 {
		return StatusPending, session, lastErr
	}

	return StatusProtected, session, lastErr
}

// StatusLine returns a short human-readable summary of the client's
// current delivery state.
func (c *Client) StatusLine() string {
	status, session, lastErr := c.statusSnapshot()

	line := string(status)
	if session != nil {
		line += " session=" + hex.EncodeToString(session.sessionID[:]) +
			" seq=" + strconv.Itoa(int(session.seq)) +
			" maxUpdates=" + strconv.Itoa(int(session.maxUpdates))
	}
	if lastErr != nil {
		line += " lastErr=" + lastErr.Error()
	}

	return line
}
