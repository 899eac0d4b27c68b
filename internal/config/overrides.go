package config

// Overrides contains CLI flag values that can override user config.
// Zero values indicate the flag was not set and should use the user config default.
type Overrides struct {
	// Host overrides the listen host
	Host string

	// Port overrides the HTTP port (0 means use config)
	Port int

	// ReadOnly forces read-only mode
	ReadOnly bool

	// MaxConnections overrides the connection limit (negative means use config)
	MaxConnections int

	// Debug forces debug logging
	Debug bool

	// NoWebTransport disables the QUIC listener
	NoWebTransport bool
}

// NoOverrides is an Overrides value that changes nothing.
func NoOverrides() Overrides {
	return Overrides{MaxConnections: -1}
}

// ApplyOverrides applies CLI flag overrides on top of cfg.
func ApplyOverrides(overrides Overrides, cfg *UserConfig) {
	if overrides.Host != "" {
		cfg.Server.Host = overrides.Host
	}
	if overrides.Port > 0 {
		cfg.Server.Port = overrides.Port
	}

	// Read-only - OR of CLI flag and user config
	cfg.Server.ReadOnly = cfg.Server.ReadOnly || overrides.ReadOnly

	if overrides.MaxConnections >= 0 {
		cfg.Server.MaxConnections = overrides.MaxConnections
	}
	if overrides.Debug {
		cfg.Logging.Level = "debug"
	}
	if overrides.NoWebTransport {
		off := false
		cfg.Server.WebTransport = &off
	}
}
