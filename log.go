package lnwatchtower

import (
	"io"

	"github.com/breez/lnwatchtower/brontide"
	"github.com/breez/lnwatchtower/build"
	"github.com/breez/lnwatchtower/tor"
	"github.com/breez/lnwatchtower/watchtower/wtclient"
	"github.com/btcsuite/btclog"
)

// logWriter is the shared sink every subsystem logger ultimately writes
// through. An embedding application points it at a file, stderr, or
// anything else via SetLogWriter; the package loggers are already
// installed by this package's init.
var logWriter = &build.LogWriter{}

// backendLog is the backend all subsystem loggers are created from.
var backendLog = btclog.NewBackend(logWriter)

var (
	btcnLog = build.NewSubLogger("BTCN", backendLog)
	torLog  = build.NewSubLogger("TOR", backendLog)
	wtclLog = build.NewSubLogger("WTCL", backendLog)
)

// subsystemLoggers maps each subsystem tag to its logger, so SetLogLevel
// and SetLogLevels can reach them by name.
var subsystemLoggers = map[string]btclog.Logger{
	"BTCN": btcnLog,
	"TOR":  torLog,
	"WTCL": wtclLog,
}

func init() {
	brontide.UseLogger(btcnLog)
	tor.UseLogger(torLog)
	wtclient.UseLogger(wtclLog)
}

// SetLogWriter redirects every subsystem logger's output to w. Loggers
// read logWriter.Output on every write rather than caching it, so the
// change applies to all output written after the call. The assignment is
// not synchronized with concurrent log writes.
func SetLogWriter(w io.Writer) {
	logWriter.Output = w
}

// SetLogLevel sets the logging level for a single subsystem tag. Unknown
// subsystems are ignored.
func SetLogLevel(subsystem, level string) {
	logger, ok := subsystemLoggers[subsystem]
	if !ok {
		return
	}

	lvl, _ := btclog.LevelFromString(level)
	logger.SetLevel(lvl)
}

// SetLogLevels applies level to every subsystem logger this module owns.
func SetLogLevels(level string) {
	for subsystem := range subsystemLoggers {
		SetLogLevel(subsystem, level)
	}
}
