// Package config loads the webdesk user configuration from the XDG config
// directory and applies command-line overrides to it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// configFile is the config location relative to the XDG config directories.
const configFile = "webdesk/config.toml"

// UserConfig represents the user's custom configuration
type UserConfig struct {
	Desktop DesktopConfig `toml:"desktop"`
	Monitor MonitorConfig `toml:"monitor"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// DesktopConfig holds window manager tuning. Lengths are in pixels.
type DesktopConfig struct {
	EdgeThreshold     float64 `toml:"edge_threshold"`      // Distance from an edge that starts a resize, the top edge of the header included (default: 10)
	MinWidth          float64 `toml:"min_width"`           // Minimum window width (default: 300)
	MinHeight         float64 `toml:"min_height"`          // Minimum window height (default: 200)
	CloseDelayMS      int     `toml:"close_delay_ms"`      // Close animation length before removal (default: 250)
	SettleDelayMS     int     `toml:"settle_delay_ms"`     // Restore animation length before cleanup (default: 450)
	MobileBreakpoint  float64 `toml:"mobile_breakpoint"`   // Viewport width at or below which the mobile dock margin applies (default: 768)
	MobileDockMargin  float64 `toml:"mobile_dock_margin"`  // Space kept free for the dock by maximized windows on narrow viewports (default: 60)
	DesktopDockMargin float64 `toml:"desktop_dock_margin"` // Same, on wide viewports (default: 80)
	CascadeStep       float64 `toml:"cascade_step"`        // Offset between newly opened windows (default: 30)
}

// CloseDelay returns the close animation length.
func (d DesktopConfig) CloseDelay() time.Duration {
	return time.Duration(d.CloseDelayMS) * time.Millisecond
}

// SettleDelay returns the restore settle delay.
func (d DesktopConfig) SettleDelay() time.Duration {
	return time.Duration(d.SettleDelayMS) * time.Millisecond
}

// MonitorConfig holds settings for the system monitor window.
type MonitorConfig struct {
	IntervalMS int `toml:"interval_ms"` // Refresh interval (default: 1000)
	History    int `toml:"history"`     // CPU samples kept for the graph (default: 10)
}

// Interval returns the refresh interval.
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMS) * time.Millisecond
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`            // Listen host (default: localhost)
	Port           int      `toml:"port"`            // HTTP port; WebTransport listens on port+1 (default: 7681)
	ReadOnly       bool     `toml:"read_only"`       // Ignore input from clients
	MaxConnections int      `toml:"max_connections"` // 0 means unlimited
	AllowOrigins   []string `toml:"allow_origins"`   // Extra WebSocket origin patterns
	WebTransport   *bool    `toml:"webtransport"`    // Serve WebTransport over QUIC (default: true)
}

// WebTransportEnabled reports whether WebTransport should be served.
func (s ServerConfig) WebTransportEnabled() bool {
	return s.WebTransport == nil || *s.WebTransport
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn or error (default: info)
}

// LogLevel parses the configured level, falling back to info.
func (l LoggingConfig) LogLevel() log.Level {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// DefaultConfig returns the default configuration
func DefaultConfig() *UserConfig {
	webTransport := true
	return &UserConfig{
		Desktop: DesktopConfig{
			EdgeThreshold:     10,
			MinWidth:          300,
			MinHeight:         200,
			CloseDelayMS:      250,
			SettleDelayMS:     450,
			MobileBreakpoint:  768,
			MobileDockMargin:  60,
			DesktopDockMargin: 80,
			CascadeStep:       30,
		},
		Monitor: MonitorConfig{
			IntervalMS: 1000,
			History:    10,
		},
		Server: ServerConfig{
			Host:         "localhost",
			Port:         7681,
			AllowOrigins: []string{},
			WebTransport: &webTransport,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadUserConfig loads the user configuration from XDG config directory
func LoadUserConfig() (*UserConfig, error) {
	configPath, err := xdg.SearchConfigFile(configFile)
	if err != nil {
		// Config doesn't exist, create default
		return createDefaultConfig()
	}
	return LoadFromPath(configPath)
}

// LoadFromPath reads, completes and validates the config file at path.
// Validation warnings are logged; validation errors fail the load.
func LoadFromPath(path string) (*UserConfig, error) {
	// #nosec G304 - path is the user's own config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	validation := ValidateConfig(cfg)
	if validation.HasErrors() {
		for _, e := range validation.Errors {
			log.Error("config error", "section", e.Field, "key", e.Key, "msg", e.Message)
		}
		return nil, fmt.Errorf("configuration has %d error(s), please fix and restart: %w",
			len(validation.Errors), validation.Errors[0])
	}
	for _, w := range validation.Warnings {
		log.Warn("config warning", "section", w.Field, "key", w.Key, "msg", w.Message)
	}

	return cfg, nil
}

func parse(data []byte) (*UserConfig, error) {
	var cfg UserConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, e := range strict.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaultCfg := DefaultConfig()
	fillMissingDesktop(&cfg, defaultCfg)
	fillMissingMonitor(&cfg, defaultCfg)
	fillMissingServer(&cfg, defaultCfg)
	fillMissingLogging(&cfg, defaultCfg)
	return &cfg, nil
}

// createDefaultConfig creates a default config file in the user's config directory
func createDefaultConfig() (*UserConfig, error) {
	cfg := DefaultConfig()

	configPath, err := xdg.ConfigFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	if err := writeConfig(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResetConfig overwrites the config file with the defaults and returns its
// path.
func ResetConfig() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return configPath, writeConfig(configPath, DefaultConfig())
}

func writeConfig(configPath string, cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# webdesk configuration file\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + configPath + "\n")
	sb.WriteString("# Changes to [desktop] and [monitor] apply to new sessions without a restart.\n\n")

	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# DESKTOP\n")
	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# edge_threshold: distance in pixels from a window edge that starts a resize;\n")
	sb.WriteString("#   a header press this close to the top edge resizes instead of dragging\n")
	sb.WriteString("# min_width, min_height: smallest size a resize can produce\n")
	sb.WriteString("# close_delay_ms, settle_delay_ms: animation lengths for close and restore\n")
	sb.WriteString("# mobile_breakpoint: viewport width at or below which mobile_dock_margin is\n")
	sb.WriteString("#   kept free under maximized windows instead of desktop_dock_margin\n")
	sb.WriteString("# cascade_step: offset between newly opened windows\n")
	sb.WriteString("#\n")
	sb.WriteString("# MONITOR\n")
	sb.WriteString("# interval_ms: refresh interval of the system monitor window\n")
	sb.WriteString("# history: number of CPU samples in the graph\n")
	sb.WriteString("#\n")
	sb.WriteString("# SERVER\n")
	sb.WriteString("# port: HTTP port; WebTransport uses port+1\n")
	sb.WriteString("# max_connections: 0 means unlimited\n")
	sb.WriteString("#\n")
	sb.WriteString("# LOGGING\n")
	sb.WriteString("# level: debug, info, warn, error\n")
	sb.WriteString("# ============================================================================\n\n")
	sb.Write(data)

	if err := os.WriteFile(configPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// fillMissingDesktop fills in any missing desktop settings with defaults
func fillMissingDesktop(cfg, defaultCfg *UserConfig) {
	d, def := &cfg.Desktop, defaultCfg.Desktop
	if d.EdgeThreshold == 0 {
		d.EdgeThreshold = def.EdgeThreshold
	}
	if d.MinWidth == 0 {
		d.MinWidth = def.MinWidth
	}
	if d.MinHeight == 0 {
		d.MinHeight = def.MinHeight
	}
	if d.CloseDelayMS == 0 {
		d.CloseDelayMS = def.CloseDelayMS
	}
	if d.SettleDelayMS == 0 {
		d.SettleDelayMS = def.SettleDelayMS
	}
	if d.MobileBreakpoint == 0 {
		d.MobileBreakpoint = def.MobileBreakpoint
	}
	if d.MobileDockMargin == 0 {
		d.MobileDockMargin = def.MobileDockMargin
	}
	if d.DesktopDockMargin == 0 {
		d.DesktopDockMargin = def.DesktopDockMargin
	}
	if d.CascadeStep == 0 {
		d.CascadeStep = def.CascadeStep
	}
}

// fillMissingMonitor fills in any missing monitor settings with defaults
func fillMissingMonitor(cfg, defaultCfg *UserConfig) {
	if cfg.Monitor.IntervalMS == 0 {
		cfg.Monitor.IntervalMS = defaultCfg.Monitor.IntervalMS
	}
	if cfg.Monitor.History == 0 {
		cfg.Monitor.History = defaultCfg.Monitor.History
	}
}

// fillMissingServer fills in any missing server settings with defaults
func fillMissingServer(cfg, defaultCfg *UserConfig) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultCfg.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultCfg.Server.Port
	}
	if cfg.Server.AllowOrigins == nil {
		cfg.Server.AllowOrigins = []string{}
	}
	// WebTransport stays nil when unset; WebTransportEnabled treats that as on.
}

func fillMissingLogging(cfg, defaultCfg *UserConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultCfg.Logging.Level
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	path, err := xdg.SearchConfigFile(configFile)
	if err != nil {
		// Return where it would be created
		return xdg.ConfigFile(configFile)
	}
	return path, nil
}
