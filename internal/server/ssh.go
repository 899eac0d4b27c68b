// Package server serves the terminal desktop over SSH. Every SSH session
// gets its own desktop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/Gaurav-Gosain/webdesk/internal/config"
	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/Gaurav-Gosain/webdesk/internal/theme"
	"github.com/Gaurav-Gosain/webdesk/internal/tui"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

// fps caps the redraw rate of each SSH session.
const fps = 30

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "server",
	})
}

// SetLogLevel sets the logging level for the server package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Host     string
	Port     string
	KeyPath  string // Defaults to ~/.ssh/webdesk_host_key
	ReadOnly bool
	Desktop  config.DesktopConfig
	Monitor  config.MonitorConfig
	Palette  *theme.Palette // Built-in colors when nil
}

// hostKeyPath returns the configured host key path or the default one.
func (cfg *SSHServerConfig) hostKeyPath() (string, error) {
	if cfg.KeyPath != "" {
		return cfg.KeyPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ssh", "webdesk_host_key"), nil
}

// newModel creates the desktop model of one session.
func (cfg *SSHServerConfig) newModel(user string) *tui.Model {
	m := tui.New(desktop.Options{
		Logger:   logger.With("user", user),
		Settings: cfg.Desktop,
		Monitor:  cfg.Monitor,
		ReadOnly: cfg.ReadOnly,
	})
	if cfg.Palette != nil {
		m.SetPalette(*cfg.Palette)
	}
	return m
}

// teaHandler creates a desktop for each SSH session.
func (cfg *SSHServerConfig) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, active := sshSession.Pty()
	if !active {
		logger.Warn("session without a pty refused", "user", sshSession.User())
		return nil, nil
	}
	logger.Info("session started", "user", sshSession.User(), "remote", sshSession.RemoteAddr())

	return cfg.newModel(sshSession.User()), []tea.ProgramOption{
		tea.WithFPS(fps),
		tea.WithWindowSize(pty.Window.Width, pty.Window.Height),
	}
}

// StartSSHServer runs the SSH server until ctx is cancelled.
func StartSSHServer(ctx context.Context, cfg *SSHServerConfig) error {
	hostKeyPath, err := cfg.hostKeyPath()
	if err != nil {
		return err
	}

	server, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(cfg.teaHandler),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}
	defer func() { _ = ln.Close() }()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting SSH server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("SSH server error: %w", err)
	}

	logger.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
