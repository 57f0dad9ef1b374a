package brontide

import "github.com/btcsuite/btclog"

// log is this subsystem's logger, installed by the embedding application
// via UseLogger. It defaults to the no-op logger so the package is safe
// to use in tests without wiring a backend first.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by the brontide package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
