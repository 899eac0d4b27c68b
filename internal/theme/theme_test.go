package theme

import (
	"errors"
	"testing"
)

func TestLoad(t *testing.T) {
	ids := IDs()
	if len(ids) == 0 {
		t.Fatal("no themes registered")
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "built-in", id: ""},
		{name: "registered", id: ids[0]},
		{name: "unknown", id: "no-such-theme", wantErr: ErrUnknownTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			for name, c := range map[string]any{
				"BorderActive":   p.BorderActive,
				"BorderInactive": p.BorderInactive,
				"Bar":            p.Bar,
				"Dock":           p.Dock,
				"Hint":           p.Hint,
			} {
				if c == nil {
					t.Errorf("%s is nil", name)
				}
			}
		})
	}
}
