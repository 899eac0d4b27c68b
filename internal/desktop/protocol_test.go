package desktop

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Message
		wantErr bool
	}{
		{
			name: "pointer",
			data: `0{"kind":"down","id":"about","region":"header","x":10,"y":20}`,
			want: PointerMessage{Kind: "down", ID: "about", Region: "header", X: 10, Y: 20},
		},
		{
			name: "command",
			data: `5{"action":"close","id":"about"}`,
			want: CommandMessage{Action: "close", ID: "about"},
		},
		{name: "ping", data: "3", want: PingMessage{}},
		{name: "pong", data: "4", want: PongMessage{}},
		{name: "bad json", data: `0{"kind":`, wantErr: true},
		{name: "server only type", data: "1{}", wantErr: true},
		{name: "unknown type", data: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Type() != tt.data[0] {
				t.Errorf("Type() = %q, want %q", got.Type(), tt.data[0])
			}
			if pm, ok := got.(PointerMessage); ok {
				want := tt.want.(PointerMessage)
				if pm.Kind != want.Kind || pm.ID != want.ID || pm.X != want.X || pm.Y != want.Y || pm.Region != want.Region {
					t.Errorf("Decode() = %+v, want %+v", pm, want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyMessage", err)
	}
}

func TestDecodeViewport(t *testing.T) {
	data := []byte(`2{"width":1024,"height":768,"areaX":0,"areaY":32,"icons":{"about":{"left":1,"top":2,"width":3,"height":4}}}`)
	msg, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	v := msg.(ViewportMessage)
	vp := v.Viewport()
	if vp.Width != 1024 || vp.Height != 768 || vp.Origin != (geom.Point{X: 0, Y: 32}) {
		t.Errorf("Viewport() = %+v", vp)
	}
	if v.Icons["about"] != (geom.Rect{Left: 1, Top: 2, Width: 3, Height: 4}) {
		t.Errorf("icons = %+v", v.Icons)
	}
}

func TestPointerEvent(t *testing.T) {
	mouse := PointerMessage{X: 5, Y: 6}.Event()
	if mouse.Source != wm.SourceMouse {
		t.Errorf("default source = %v, want mouse", mouse.Source)
	}
	if p, ok := mouse.Contact(); !ok || p != (geom.Point{X: 5, Y: 6}) {
		t.Errorf("mouse contact = %v %v", p, ok)
	}

	touch := PointerMessage{Source: "touch", X: 5, Y: 6, Touches: []geom.Point{{X: 7, Y: 8}}}.Event()
	if p, ok := touch.Contact(); !ok || p != (geom.Point{X: 7, Y: 8}) {
		t.Errorf("touch contact = %v %v, want first touch", p, ok)
	}
	if _, ok := (PointerMessage{Source: "touch"}).Event().Contact(); ok {
		t.Error("touch without touches should have no contact")
	}

	if (PointerMessage{Region: "header"}).WindowRegion() != wm.RegionHeader {
		t.Error("header region not mapped")
	}
	if (PointerMessage{}).WindowRegion() != wm.RegionBody {
		t.Error("empty region should be body")
	}
}

func TestEncodePatch(t *testing.T) {
	on := true
	r := geom.Rect{Left: 1, Top: 2, Width: 3, Height: 4}
	data, err := Encode(MsgPatch, PatchMessage{Ops: []Op{
		{Op: OpGeometry, ID: "a", Rect: &r},
		{Op: OpState, ID: "a", State: "active", On: &on},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != MsgPatch {
		t.Fatalf("type byte = %q", data[0])
	}
	var got struct {
		Ops []map[string]any `json:"ops"`
	}
	if err := json.Unmarshal(data[1:], &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Ops) != 2 {
		t.Fatalf("ops = %v", got.Ops)
	}
	if _, ok := got.Ops[0]["state"]; ok {
		t.Error("geometry op should omit state")
	}
	if got.Ops[1]["on"] != true {
		t.Errorf("state op = %v", got.Ops[1])
	}

	bare, _ := Encode(MsgClose, nil)
	if !bytes.Equal(bare, []byte{MsgClose}) {
		t.Errorf("Encode(close) = %q", bare)
	}
}

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	msgs := [][]byte{[]byte("3"), []byte(`5{"action":"focus","id":"a"}`), {}}
	for _, m := range msgs {
		if err := WriteFramed(&buf, m); err != nil {
			t.Fatal(err)
		}
	}
	for i, want := range msgs {
		got, err := ReadFramed(&buf)
		if err != nil {
			t.Fatalf("ReadFramed() #%d error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadFramed() #%d = %q, want %q", i, got, want)
		}
	}
	if _, err := ReadFramed(&buf); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFramed() at end = %v, want EOF", err)
	}
}

func TestReadFramedTooLarge(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff}
	if _, err := ReadFramed(bytes.NewReader(data)); err == nil {
		t.Error("expected error for oversized frame")
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		id      string
		suggest string
		wantErr bool
	}{
		{id: "terminal"},
		{id: "monitor"},
		{id: "projcts", suggest: "projects", wantErr: true},
		{id: "abut", suggest: "about", wantErr: true},
		{id: "spreadsheet", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			app, err := c.Lookup(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownApp) {
				t.Errorf("error %v does not wrap ErrUnknownApp", err)
			}
			if !tt.wantErr && app.ID != tt.id {
				t.Errorf("Lookup() = %q", app.ID)
			}
			if got := c.Suggest(tt.id); tt.wantErr && got != tt.suggest {
				t.Errorf("Suggest() = %q, want %q", got, tt.suggest)
			}
		})
	}
}

func TestNewCatalogReplacesDuplicates(t *testing.T) {
	c := NewCatalog(App{ID: "a", Title: "one"}, App{ID: "b"}, App{ID: "a", Title: "two"})
	apps := c.Apps()
	if len(apps) != 2 || apps[0].ID != "a" || apps[0].Title != "two" {
		t.Errorf("Apps() = %+v", apps)
	}
}
