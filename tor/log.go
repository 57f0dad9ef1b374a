package tor

import "github.com/btcsuite/btclog"

// log is the default logger used by this package; callers must call
// UseLogger to enable real output.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the tor package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
