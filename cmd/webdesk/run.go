package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/webdesk/internal/config"
	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/Gaurav-Gosain/webdesk/internal/server"
	"github.com/Gaurav-Gosain/webdesk/internal/theme"
	"github.com/Gaurav-Gosain/webdesk/internal/tui"
	"github.com/Gaurav-Gosain/webdesk/internal/web"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// loadConfig loads the user config, falling back to the defaults, and
// applies the CLI overrides on top.
func loadConfig(overrides config.Overrides) *config.UserConfig {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		log.Warn("failed to load config, using defaults", "err", err)
		cfg = config.DefaultConfig()
	}
	config.ApplyOverrides(overrides, cfg)
	return cfg
}

func setLogLevels(cfg *config.UserConfig) {
	level := cfg.Logging.LogLevel()
	log.SetLevel(level)
	web.SetLogLevel(level)
	desktop.SetLogLevel(level)
	server.SetLogLevel(level)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runWebServer(parent context.Context, overrides config.Overrides) error {
	ctx, cancel := signalContext(parent)
	defer cancel()

	cfg := loadConfig(overrides)
	setLogLevels(cfg)

	srv := web.NewServer(web.ConfigFromUser(cfg))
	watchConfig(ctx, overrides, srv)
	return srv.Start(ctx)
}

// watchConfig hands reloaded config files to srv. Listener settings only
// change on restart.
func watchConfig(ctx context.Context, overrides config.Overrides, srv *web.Server) {
	path, err := config.GetConfigPath()
	if err != nil {
		log.Warn("config reload disabled", "err", err)
		return
	}
	err = config.Watch(ctx, path, func(cfg *config.UserConfig, err error) {
		if err != nil {
			log.Warn("config reload failed, keeping previous settings", "err", err)
			return
		}
		config.ApplyOverrides(overrides, cfg)
		setLogLevels(cfg)
		srv.UpdateConfig(cfg)
		log.Info("config reloaded", "path", path)
	})
	if err != nil {
		log.Warn("config reload disabled", "err", err)
	}
}

func runLocal(overrides config.Overrides, noColor bool, themeName string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("webdesk tui needs an interactive terminal")
	}

	palette, err := theme.Load(themeName)
	if err != nil {
		return err
	}
	cfg := loadConfig(overrides)

	// Logs would draw over the desktop, so they go to a file in debug mode
	// and nowhere otherwise.
	var logOut io.Writer = io.Discard
	if cfg.Logging.Level == "debug" {
		path := filepath.Join(os.TempDir(), "webdesk-tui.log")
		// #nosec G304 - fixed log path
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
		fmt.Printf("Debug log: %s\n", path)
	}
	logger := log.NewWithOptions(logOut, log.Options{ReportTimestamp: true, Prefix: "desktop"})
	logger.SetLevel(cfg.Logging.LogLevel())

	model := tui.New(desktop.Options{
		Logger:   logger,
		Settings: cfg.Desktop,
		Monitor:  cfg.Monitor,
		ReadOnly: cfg.Server.ReadOnly,
	})
	model.SetPalette(palette)

	opts := []tea.ProgramOption{tea.WithFPS(30)}
	if noColor {
		opts = append(opts, tea.WithColorProfile(colorprofile.ASCII))
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runSSHServer(parent context.Context, overrides config.Overrides, host, port, keyPath, themeName string) error {
	palette, err := theme.Load(themeName)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(parent)
	defer cancel()

	cfg := loadConfig(overrides)
	setLogLevels(cfg)

	return server.StartSSHServer(ctx, &server.SSHServerConfig{
		Host:     host,
		Port:     port,
		KeyPath:  keyPath,
		ReadOnly: cfg.Server.ReadOnly,
		Desktop:  cfg.Desktop,
		Monitor:  cfg.Monitor,
		Palette:  &palette,
	})
}

// printConfigPath prints the config file path
func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	// Ensure config file exists (create default if needed)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return errors.New("no editor found. Please set $EDITOR environment variable")
	}

	// #nosec G204 - the editor is chosen by the user
	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// resetConfigToDefaults resets the configuration file to default settings
func resetConfigToDefaults(yes bool) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !yes {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		_, _ = fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	path, err := config.ResetConfig()
	if err != nil {
		return fmt.Errorf("failed to reset config: %w", err)
	}
	fmt.Printf("Configuration reset to defaults: %s\n", path)
	return nil
}
