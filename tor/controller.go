// Package tor implements the C7 transport adapter: a byte-stream to the
// configured watchtower, either via a local Tor daemon's SOCKS5 proxy
// (the "onion" mode) or a plain TCP dial (the "tcp" mode), behind one
// common Dialer interface so C4's brontide handshake never needs to know
// which was used.
package tor

import (
	"bufio"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/go-errors/errors"
)

// bootstrapTimeout bounds how long the controller waits for the Tor
// daemon to report a working SOCKS listener. A cold start (fresh
// consensus download) can take 5-15s; a warm start with a cached
// directory is typically 1-3s.
const bootstrapTimeout = 30 * time.Second

// ErrBootstrapFailed is returned when the control port does not report a
// usable SOCKS listener within bootstrapTimeout.
var ErrBootstrapFailed = errors.New("tor: bootstrap did not complete " +
	"in time")

// Controller is a minimal client for Tor's control protocol, just
// capable enough to discover the local SOCKS proxy address. It
// deliberately does not implement the general control protocol (onion
// service creation, circuit introspection, …) — this bridge always
// connects out to an already-published tower address, it never
// publishes one of its own.
type Controller struct {
	controlAddr string
	password    string

	conn   net.Conn
	reader *textproto.Reader
}

// NewController returns a Controller that will dial controlAddr (e.g.
// "127.0.0.1:9051") on Start.
func NewController(controlAddr, password string) *Controller {
	return &Controller{
		controlAddr: controlAddr,
		password:    password,
	}
}

// Start connects to the control port, authenticates, and blocks until
// the daemon reports bootstrap completion or bootstrapTimeout elapses.
func (c *Controller) Start() error {
	conn, err := net.DialTimeout("tcp", c.controlAddr, 10*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = textproto.NewReader(bufio.NewReader(conn))

	if err := c.authenticate(); err != nil {
		conn.Close()
		return err
	}

	if err := c.awaitBootstrap(); err != nil {
		conn.Close()
		return err
	}

	return nil
}

// Stop closes the control connection.
func (c *Controller) Stop() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Controller) sendCommand(cmd string) (string, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", cmd); err != nil {
		return "", err
	}
	line, err := c.reader.ReadLine()
	if err != nil {
		return "", err
	}
	return line, nil
}

func (c *Controller) authenticate() error {
	cmd := `AUTHENTICATE ""`
	if c.password != "" {
		cmd = fmt.Sprintf(`AUTHENTICATE "%s"`, c.password)
	}

	reply, err := c.sendCommand(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "250") {
		return fmt.Errorf("tor: authentication failed: %s", reply)
	}
	return nil
}

// awaitBootstrap polls the daemon's bootstrap progress until it reports
// 100%, or bootstrapTimeout elapses.
func (c *Controller) awaitBootstrap() error {
	deadline := time.Now().Add(bootstrapTimeout)

	for time.Now().Before(deadline) {
		reply, err := c.sendCommand(`GETINFO status/bootstrap-phase`)
		if err != nil {
			return err
		}
		if strings.Contains(reply, "PROGRESS=100") {
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return ErrBootstrapFailed
}

// SOCKSAddr queries the control port for the daemon's SOCKS listener
// address.
func (c *Controller) SOCKSAddr() (string, error) {
	reply, err := c.sendCommand(`GETINFO net/listeners/socks`)
	if err != nil {
		return "", err
	}

	const prefix = "250-net/listeners/socks="
	idx := strings.Index(reply, prefix)
	if idx == -1 {
		return "", fmt.Errorf("tor: unexpected control reply: %s", reply)
	}

	addr := strings.Trim(reply[idx+len(prefix):], `" `)
	return addr, nil
}
