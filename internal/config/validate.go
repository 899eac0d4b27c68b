package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ValidationError describes one problem in the config file.
type ValidationError struct {
	Field   string // config section
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Field, e.Key, e.Message)
}

// ValidationResult collects the errors and warnings of a config.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors reports whether any fatal problems were found.
func (v *ValidationResult) HasErrors() bool { return len(v.Errors) > 0 }

// HasWarnings reports whether any non-fatal problems were found.
func (v *ValidationResult) HasWarnings() bool { return len(v.Warnings) > 0 }

func (v *ValidationResult) errorf(field, key, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) warnf(field, key, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationError{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig checks a filled config for values the desktop cannot use.
func ValidateConfig(cfg *UserConfig) *ValidationResult {
	v := &ValidationResult{}

	d := cfg.Desktop
	if d.EdgeThreshold < 0 {
		v.errorf("desktop", "edge_threshold", "must be positive, got %v", d.EdgeThreshold)
	} else if d.EdgeThreshold > 50 {
		v.warnf("desktop", "edge_threshold", "%v px makes most of a small window a resize zone", d.EdgeThreshold)
	}
	if d.MinWidth < 0 || d.MinHeight < 0 {
		v.errorf("desktop", "min_width/min_height", "must be positive, got %vx%v", d.MinWidth, d.MinHeight)
	} else if d.MinWidth < 2*d.EdgeThreshold || d.MinHeight < 2*d.EdgeThreshold {
		v.warnf("desktop", "min_width/min_height", "windows smaller than two edge thresholds have no drag area")
	}
	if d.CloseDelayMS < 0 {
		v.errorf("desktop", "close_delay_ms", "must be positive, got %d", d.CloseDelayMS)
	}
	if d.SettleDelayMS < 0 {
		v.errorf("desktop", "settle_delay_ms", "must be positive, got %d", d.SettleDelayMS)
	}
	if d.MobileBreakpoint < 0 {
		v.errorf("desktop", "mobile_breakpoint", "must be positive, got %v", d.MobileBreakpoint)
	}
	if d.MobileDockMargin < 0 || d.DesktopDockMargin < 0 {
		v.errorf("desktop", "dock_margin", "margins must be positive")
	}
	if d.CascadeStep < 0 {
		v.errorf("desktop", "cascade_step", "must be positive, got %v", d.CascadeStep)
	}

	m := cfg.Monitor
	if m.IntervalMS < 0 {
		v.errorf("monitor", "interval_ms", "must be positive, got %d", m.IntervalMS)
	} else if m.IntervalMS > 0 && m.IntervalMS < 100 {
		v.warnf("monitor", "interval_ms", "%d ms samples the system very often", m.IntervalMS)
	}
	if m.History < 0 {
		v.errorf("monitor", "history", "must be positive, got %d", m.History)
	} else if m.History > 120 {
		v.warnf("monitor", "history", "%d samples will not fit in the monitor window", m.History)
	}

	s := cfg.Server
	if s.Port < 0 || s.Port > 65534 {
		// port+1 is used for WebTransport
		v.errorf("server", "port", "must be between 1 and 65534, got %d", s.Port)
	}
	if s.MaxConnections < 0 {
		v.errorf("server", "max_connections", "must be 0 (unlimited) or more, got %d", s.MaxConnections)
	}
	for _, o := range s.AllowOrigins {
		if strings.TrimSpace(o) == "" {
			v.warnf("server", "allow_origins", "empty origin pattern ignored")
		}
	}

	if _, err := log.ParseLevel(cfg.Logging.Level); err != nil {
		v.errorf("logging", "level", "unknown level %q (use debug, info, warn or error)", cfg.Logging.Level)
	}

	return v
}
