package tor

import "time"

// ClientConfig collects everything C7 needs to produce a Dialer for a
// single tower connection, mirroring watchtower.transport's two modes
// ("onion" and "tcp").
type ClientConfig struct {
	// Active selects onion mode. When false, Dialer always returns a
	// TCPDialer regardless of the other fields.
	Active bool

	// ControlAddr is the local Tor daemon's control port, e.g.
	// "127.0.0.1:9051".
	ControlAddr string

	// ControlPassword authenticates to ControlAddr, empty for cookie-less
	// setups that permit an empty AUTHENTICATE.
	ControlPassword string

	// TCPFallback makes Dialer return a plain TCPDialer when the onion
	// daemon fails to bootstrap, and gives the returned PolicyDialer a
	// TCP dialer to fall back to when an onion dial fails.
	TCPFallback bool

	// BootstrapTimeout is not read by Dialer: the Controller always waits
	// up to the package's fixed bootstrapTimeout (30s) for the Tor
	// daemon to finish bootstrapping.
	BootstrapTimeout time.Duration
}

// Dialer starts the local Tor controller (when cfg.Active) and returns
// the Dialer C4 should use to reach the configured tower. The returned
// Controller must be stopped by the caller once the dialer is no longer
// needed.
func (cfg ClientConfig) Dialer() (Dialer, *Controller, error) {
	if !cfg.Active {
		return TCPDialer{}, nil, nil
	}

	ctrl := NewController(cfg.ControlAddr, cfg.ControlPassword)
	if err := ctrl.Start(); err != nil {
		if cfg.TCPFallback {
			log.Warnf("tor bootstrap failed, falling back to tcp: %v", err)
			return TCPDialer{}, nil, nil
		}
		return nil, nil, err
	}

	proxyAddr, err := ctrl.SOCKSAddr()
	if err != nil {
		ctrl.Stop()
		if cfg.TCPFallback {
			log.Warnf("tor bootstrap failed, falling back to tcp: %v", err)
			return TCPDialer{}, nil, nil
		}
		return nil, nil, err
	}

	policy := &PolicyDialer{
		Onion:       NewSOCKSDialer(proxyAddr),
		PreferOnion: true,
	}
	if cfg.TCPFallback {
		policy.TCP = TCPDialer{}
	}

	return policy, ctrl, nil
}
