package wtclient

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"github.com/breez/lnwatchtower/lnwire"
	"github.com/btcsuite/btcd/btcec"
)

// ParseTowerURI parses a watchtower.tower_uri configuration value in the
// canonical "pubkey@host:port" form, the same convention the core daemon
// uses for its own peer addresses.
func ParseTowerURI(uri string) (*lnwire.NetAddress, error) {
	parts := strings.Split(uri, "@")
	if len(parts) != 2 {
		return nil, fmt.Errorf("tower_uri expected in format " +
			"pubkey@host:port")
	}

	pubKeyBytes, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid tower pubkey: %v", err)
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("invalid tower pubkey: %v", err)
	}

	host, port, err := net.SplitHostPort(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid tower address: %v", err)
	}

	return &lnwire.NetAddress{
		IdentityKey: pubKey,
		Address:     &addr{host: host, port: port},
	}, nil
}

// addr is a minimal net.Addr, used because the tower's address may name an
// onion host that net.ResolveTCPAddr cannot resolve.
type addr struct {
	host string
	port string
}

func (a *addr) Network() string { return "tcp" }
func (a *addr) String() string  { return net.JoinHostPort(a.host, a.port) }

// RegisterTower updates the client's target tower, replacing any existing
// persistent session. The next PushPending call opens a fresh session
// against the new tower.
func (c *Client) RegisterTower(towerURI string) error {
	netAddr, err := ParseTowerURI(towerURI)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	c.cfg.TowerAddr = netAddr

	return nil
}
