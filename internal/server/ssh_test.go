package server

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/config"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestHostKeyPath(t *testing.T) {
	tests := []struct {
		name     string
		keyPath  string
		wantPath string
		wantSfx  string
	}{
		{name: "explicit", keyPath: "/tmp/key", wantPath: "/tmp/key"},
		{name: "default", wantSfx: filepath.Join(".ssh", "webdesk_host_key")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &SSHServerConfig{KeyPath: tt.keyPath}
			got, err := cfg.hostKeyPath()
			if err != nil {
				t.Fatalf("hostKeyPath() error = %v", err)
			}
			if tt.wantPath != "" && got != tt.wantPath {
				t.Errorf("hostKeyPath() = %q, want %q", got, tt.wantPath)
			}
			if tt.wantSfx != "" && !strings.HasSuffix(got, tt.wantSfx) {
				t.Errorf("hostKeyPath() = %q, want suffix %q", got, tt.wantSfx)
			}
		})
	}
}

func TestNewModelUsesSettings(t *testing.T) {
	desk := config.DefaultConfig().Desktop
	desk.EdgeThreshold = 16
	cfg := &SSHServerConfig{ReadOnly: true, Desktop: desk}

	hello := cfg.newModel("alice").Desktop().Hello()
	if !hello.ReadOnly {
		t.Error("model is not read-only")
	}
	if hello.EdgeThreshold != 16 {
		t.Errorf("edge threshold = %v, want 16", hello.EdgeThreshold)
	}
}

func TestStartSSHServerStopsOnCancel(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "host_key")
	cfg := &SSHServerConfig{Host: "127.0.0.1", Port: "0", KeyPath: keyPath}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartSSHServer(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("StartSSHServer() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	if _, err := os.Stat(keyPath); err != nil {
		t.Errorf("host key not created: %v", err)
	}
}
