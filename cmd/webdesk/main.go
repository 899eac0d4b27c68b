// Package main implements webdesk, a desktop of draggable, resizable windows
// served to the browser, the terminal and SSH clients.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gaurav-Gosain/webdesk/internal/config"
	"github.com/Gaurav-Gosain/webdesk/internal/theme"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	overrides := config.NoOverrides()
	if err := fang.Execute(
		context.Background(),
		newRootCmd(&overrides),
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags write into overrides, which the
// commands read when they run.
func newRootCmd(overrides *config.Overrides) *cobra.Command {
	serve := func(cmd *cobra.Command, _ []string) error {
		return runWebServer(cmd.Context(), *overrides)
	}

	rootCmd := &cobra.Command{
		Use:   "webdesk",
		Short: "Browser desktop with draggable, resizable windows",
		Long: `webdesk - a desktop in the browser

Serves a desktop of windows that can be dragged, resized, minimized to a
dock, maximized and closed. The same desktop also runs in the terminal and
over SSH.

Server features:
  - WebTransport (HTTP/3 over QUIC) with automatic WebSocket fallback
  - Self-signed TLS certificate generation for development
  - Read-only mode and connection limits
  - Config hot reload for new sessions`,
		Example: `  # Serve on the default port (7681)
  webdesk

  # Bind to all interfaces
  webdesk serve --host 0.0.0.0

  # View only
  webdesk --read-only

  # Run in this terminal
  webdesk tui

  # Serve over SSH
  webdesk ssh --port 2222`,
		Version:      version,
		RunE:         serve,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the desktop over HTTP",
		RunE:  serve,
	}

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().StringVar(&overrides.Host, "host", "", "Web server host (default from config: localhost)")
		cmd.Flags().IntVar(&overrides.Port, "port", 0, "Web server port (default from config: 7681)")
		cmd.Flags().IntVar(&overrides.MaxConnections, "max-connections", -1, "Maximum concurrent connections (0 = unlimited)")
		cmd.Flags().BoolVar(&overrides.NoWebTransport, "no-webtransport", false, "Serve WebSocket only")
	}
	rootCmd.PersistentFlags().BoolVar(&overrides.Debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&overrides.ReadOnly, "read-only", false, "Ignore pointer and command input (view only)")

	var noColor bool
	var themeName string
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the desktop in this terminal",
		Long: `Run the desktop in this terminal

Windows are drawn with box characters and driven by the mouse. Keys:
1-4 open apps, tab cycles focus, f maximizes, m minimizes, x closes and
q quits.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLocal(*overrides, noColor, themeName)
		},
	}
	tuiCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")
	tuiCmd.Flags().StringVar(&themeName, "theme", "", "Color theme to use (see 'webdesk themes')")

	var sshPort, sshHost, sshKeyPath string
	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal desktop over SSH",
		Long: `Serve the terminal desktop over SSH

Every connection gets its own desktop. The server will generate a host key
automatically if not specified.`,
		Example: `  # Start SSH server on default port
  webdesk ssh

  # Specify custom host key
  webdesk ssh --key-path /path/to/host_key`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSSHServer(cmd.Context(), *overrides, sshHost, sshPort, sshKeyPath, themeName)
		},
	}
	sshCmd.Flags().StringVar(&sshPort, "port", "2222", "SSH server port")
	sshCmd.Flags().StringVar(&sshHost, "host", "localhost", "SSH server host")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if not specified)")
	sshCmd.Flags().StringVar(&themeName, "theme", "", "Color theme to use (see 'webdesk themes')")

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "List color themes for the terminal desktop",
		Run: func(_ *cobra.Command, _ []string) {
			for _, id := range theme.IDs() {
				fmt.Println(id)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage webdesk configuration",
		Long:  `Manage webdesk configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the webdesk configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editConfigFile()
		},
	}

	var yes bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the webdesk configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return resetConfigToDefaults(yes)
		},
	}
	configResetCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)
	rootCmd.AddCommand(serveCmd, tuiCmd, sshCmd, themesCmd, configCmd)
	return rootCmd
}
