package desktop

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
)

// Message types for WebSocket/WebTransport communication.
const (
	MsgPointer  = '0' // Pointer or touch event (client -> server)
	MsgPatch    = '1' // Presentation patch (server -> client)
	MsgViewport = '2' // Viewport and dock layout (client -> server)
	MsgPing     = '3' // Ping
	MsgPong     = '4' // Pong
	MsgCommand  = '5' // Window command (client -> server)
	MsgOptions  = '6' // Session options (server -> client)
	MsgClose    = '7' // Session closed (server -> client)
)

// MaxFrameSize bounds a single framed message.
const MaxFrameSize = 1024 * 1024

// ErrEmptyMessage is returned by Decode for a zero-length message.
var ErrEmptyMessage = errors.New("empty message")

// Message is a decoded client message.
type Message interface {
	Type() byte
}

// PointerMessage carries one pointer or touch event.
type PointerMessage struct {
	Kind    string       `json:"kind"` // down, move, up, hover
	ID      string       `json:"id,omitempty"`
	Region  string       `json:"region,omitempty"` // header, body
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Source  string       `json:"source,omitempty"` // mouse, touch
	Touches []geom.Point `json:"touches,omitempty"`
}

func (PointerMessage) Type() byte { return MsgPointer }

// Event converts the message to a window manager event.
func (p PointerMessage) Event() wm.Event {
	ev := wm.Event{Client: geom.Point{X: p.X, Y: p.Y}}
	if p.Source == "touch" {
		ev.Source = wm.SourceTouch
		ev.Touches = p.Touches
	}
	return ev
}

// WindowRegion converts the region name.
func (p PointerMessage) WindowRegion() wm.Region {
	if p.Region == "header" {
		return wm.RegionHeader
	}
	return wm.RegionBody
}

// ViewportMessage reports the page size, the desktop area origin and the
// dock icon boxes in client coordinates.
type ViewportMessage struct {
	Width  float64              `json:"width"`
	Height float64              `json:"height"`
	AreaX  float64              `json:"areaX"`
	AreaY  float64              `json:"areaY"`
	Icons  map[string]geom.Rect `json:"icons,omitempty"`
}

func (ViewportMessage) Type() byte { return MsgViewport }

// Viewport converts the message to a window manager viewport.
func (v ViewportMessage) Viewport() wm.Viewport {
	return wm.Viewport{Width: v.Width, Height: v.Height, Origin: geom.Point{X: v.AreaX, Y: v.AreaY}}
}

// CommandMessage is a window command from a button or the dock.
type CommandMessage struct {
	Action string `json:"action"` // open, close, minimize, maximize, restore, focus
	ID     string `json:"id"`
}

func (CommandMessage) Type() byte { return MsgCommand }

// PingMessage is a keepalive.
type PingMessage struct{}

func (PingMessage) Type() byte { return MsgPing }

// PongMessage answers a ping.
type PongMessage struct{}

func (PongMessage) Type() byte { return MsgPong }

// AppInfo describes a launchable app to the client.
type AppInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// OptionsMessage is sent once when a session starts.
type OptionsMessage struct {
	ReadOnly      bool      `json:"readOnly"`
	Apps          []AppInfo `json:"apps"`
	EdgeThreshold float64   `json:"edgeThreshold"`
}

// Op is one presentation change. Only the fields relevant to Op are set.
type Op struct {
	Op      string      `json:"op"`
	ID      string      `json:"id"`
	Title   string      `json:"title,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Rect    *geom.Rect  `json:"rect,omitempty"`
	State   string      `json:"state,omitempty"`
	On      *bool       `json:"on,omitempty"`
	Z       int         `json:"z,omitempty"`
	Origin  *geom.Point `json:"origin,omitempty"`
	Cursor  string      `json:"cursor,omitempty"`
	Lines   []string    `json:"lines,omitempty"`
}

// Patch operation names.
const (
	OpCreate          = "create"
	OpGeometry        = "geometry"
	OpState           = "state"
	OpZ               = "z"
	OpOrigin          = "origin"
	OpClearTransition = "clear-transition"
	OpCursor          = "cursor"
	OpRemove          = "remove"
	OpDock            = "dock"
	OpContent         = "content"
)

// PatchMessage is a batch of operations applied by the client in order.
type PatchMessage struct {
	Ops []Op `json:"ops"`
}

// Encode builds a message: one type byte followed by the JSON payload.
// A nil payload encodes the type byte alone.
func Encode(typ byte, payload any) ([]byte, error) {
	if payload == nil {
		return []byte{typ}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message %q: %w", typ, err)
	}
	return append([]byte{typ}, data...), nil
}

// Decode parses a client message.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}
	payload := data[1:]
	switch data[0] {
	case MsgPointer:
		var m PointerMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("invalid pointer message: %w", err)
		}
		return m, nil
	case MsgViewport:
		var m ViewportMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("invalid viewport message: %w", err)
		}
		return m, nil
	case MsgCommand:
		var m CommandMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("invalid command message: %w", err)
		}
		return m, nil
	case MsgPing:
		return PingMessage{}, nil
	case MsgPong:
		return PongMessage{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", data[0])
	}
}

// WriteFramed writes a message with a 4-byte big-endian length prefix.
func WriteFramed(w io.Writer, msg []byte) error {
	frame := make([]byte, 4+len(msg))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(msg)))
	copy(frame[4:], msg)
	_, err := w.Write(frame)
	return err
}

// ReadFramed reads one length-prefixed message.
func ReadFramed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("message too large: %d bytes", length)
	}
	msg := make([]byte, length)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
