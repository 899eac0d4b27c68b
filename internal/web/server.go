// Package web serves the browser desktop. It hosts the static client and
// carries the desktop protocol over WebSocket, or WebTransport when the
// browser supports it, running one desktop session per connection.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/config"
	"github.com/charmbracelet/log"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"
)

//go:embed static/*
var staticFiles embed.FS

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "web",
	})
}

// SetLogLevel sets the logging level for the web package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// Config holds the web server configuration.
type Config struct {
	Host           string   // Host to bind to (default: "localhost")
	Port           string   // Port to listen on (default: "7681")
	ReadOnly       bool     // If true, ignore pointer and command input from clients
	MaxConnections int      // Maximum concurrent connections (0 = unlimited)
	AllowOrigins   []string // Allowed origins for WebSocket (empty = all)
	WebTransport   bool     // Serve WebTransport on port+1
	Debug          bool     // Enable debug logging

	Desktop config.DesktopConfig // Window manager tuning for new sessions
	Monitor config.MonitorConfig // Monitor window settings for new sessions
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	defaults := config.DefaultConfig()
	return Config{
		Host:         "localhost",
		Port:         "7681",
		WebTransport: true,
		Desktop:      defaults.Desktop,
		Monitor:      defaults.Monitor,
	}
}

// ConfigFromUser builds a server config from the user config.
func ConfigFromUser(cfg *config.UserConfig) Config {
	return Config{
		Host:           cfg.Server.Host,
		Port:           strconv.Itoa(cfg.Server.Port),
		ReadOnly:       cfg.Server.ReadOnly,
		MaxConnections: cfg.Server.MaxConnections,
		AllowOrigins:   cfg.Server.AllowOrigins,
		WebTransport:   cfg.Server.WebTransportEnabled(),
		Debug:          cfg.Logging.Level == "debug",
		Desktop:        cfg.Desktop,
		Monitor:        cfg.Monitor,
	}
}

// Server serves the browser desktop, one session per client connection.
type Server struct {
	config   Config
	limiter  connLimiter
	sessions sync.Map // session id -> *desktop.Session

	httpServer *http.Server
	wtServer   *webtransport.Server
	certInfo   *CertInfo

	mu      sync.RWMutex
	desktop config.DesktopConfig
	monitor config.MonitorConfig
}

// NewServer creates a server for cfg, filling in the default host and port.
func NewServer(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "7681"
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	logger.Debug("server configured",
		"host", cfg.Host,
		"port", cfg.Port,
		"read_only", cfg.ReadOnly,
		"max_connections", cfg.MaxConnections,
		"webtransport", cfg.WebTransport,
	)

	return &Server{
		config:  cfg,
		limiter: connLimiter{max: cfg.MaxConnections},
		desktop: cfg.Desktop,
		monitor: cfg.Monitor,
	}
}

// UpdateConfig replaces the desktop and monitor settings used by sessions
// created from now on. Running sessions keep their settings.
func (s *Server) UpdateConfig(cfg *config.UserConfig) {
	s.mu.Lock()
	s.desktop = cfg.Desktop
	s.monitor = cfg.Monitor
	s.mu.Unlock()
	logger.Info("desktop settings updated for new sessions")
}

func (s *Server) settings() (config.DesktopConfig, config.MonitorConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desktop, s.monitor
}

// Handler routes the client page, its assets, the WebSocket endpoint and
// the health and certificate probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /static/", s.handleStatic)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})
	mux.HandleFunc("GET /cert-hash", s.handleCertHash)
	return mux
}

// Start serves until ctx is cancelled or the HTTP listener fails. On
// cancellation every running session is closed before the listeners stop.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, s.config.Port)

	if s.config.WebTransport {
		if err := s.setupWebTransport(); err != nil {
			return err
		}
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	failed := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.wtServer != nil {
		go func() {
			if err := s.wtServer.ListenAndServe(); err != nil {
				logger.Warn("webtransport stopped", "err", err)
			}
		}()
		logger.Info("webtransport listening", "addr", s.wtServer.H3.Addr)
	}
	logger.Info("desktop ready", "url", "http://"+ln.Addr().String())

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "sessions", s.SessionCount())
	s.closeSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(shutdownCtx)
	if s.wtServer != nil {
		_ = s.wtServer.Close()
	}
	return nil
}

// wtPort is the WebTransport port, one above the HTTP port.
func (s *Server) wtPort() string {
	p, err := strconv.Atoi(s.config.Port)
	if err != nil {
		return "7682"
	}
	return strconv.Itoa(p + 1)
}

func (s *Server) setupWebTransport() error {
	cert, err := GenerateSelfSignedCert(s.config.Host)
	if err != nil {
		return fmt.Errorf("webtransport certificate: %w", err)
	}
	s.certInfo = cert
	logger.Debug("webtransport certificate generated", "valid_for", certValidity)

	mux := http.NewServeMux()
	mux.HandleFunc("/webtransport", s.handleWebTransport)

	s.wtServer = &webtransport.Server{
		H3: http3.Server{
			Addr:            net.JoinHostPort("127.0.0.1", s.wtPort()),
			TLSConfig:       cert.TLSConfig,
			Handler:         mux,
			EnableDatagrams: true,
		},
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return nil
}

// certHash is what the client needs to pin the self-signed certificate.
type certHash struct {
	Algorithm string `json:"algorithm"`
	HashBytes []int  `json:"hashBytes"`
	URL       string `json:"wtUrl"`
}

// handleCertHash answers 404 when WebTransport is off so the client falls
// back to WebSocket.
func (s *Server) handleCertHash(w http.ResponseWriter, r *http.Request) {
	if s.certInfo == nil {
		http.NotFound(w, r)
		return
	}
	resp := certHash{
		Algorithm: "sha-256",
		HashBytes: make([]int, 0, len(s.certInfo.Hash)),
		URL:       "https://" + net.JoinHostPort("127.0.0.1", s.wtPort()) + "/webtransport",
	}
	for _, b := range s.certInfo.Hash {
		resp.HashBytes = append(resp.HashBytes, int(b))
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	h.Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "static/index.html")
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, strings.TrimPrefix(r.URL.Path, "/"))
}

// contentTypes maps asset extensions to the types browsers insist on.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "application/javascript",
	".css":  "text/css",
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, name string) {
	data, err := staticFiles.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	logger.Debug("asset", "name", name, "size", len(data), "remote", r.RemoteAddr)
	if ct, ok := contentTypes[path.Ext(name)]; ok {
		w.Header().Set("Content-Type", ct)
	}
	_, _ = w.Write(data)
}
