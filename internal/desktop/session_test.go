package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// pipeTransport is an in-memory Transport. The test writes client messages
// to in and reads server messages from out.
type pipeTransport struct {
	in  chan []byte
	out chan []byte
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{in: make(chan []byte, 16), out: make(chan []byte, 64)}
}

func (p *pipeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-p.in:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeTransport) Write(ctx context.Context, msg []byte) error {
	select {
	case p.out <- append([]byte(nil), msg...):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeTransport) next(t *testing.T) []byte {
	t.Helper()
	select {
	case msg := <-p.out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a server message")
		return nil
	}
}

func startSession(t *testing.T, opts Options) (*Session, *pipeTransport, <-chan error) {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	if opts.Probe == nil {
		opts.Probe = staticProbe(10)
	}
	s := NewSession(opts)
	p := newPipeTransport()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, p) }()
	return s, p, done
}

func TestSessionSendsOptionsFirst(t *testing.T) {
	_, p, _ := startSession(t, Options{ReadOnly: true})
	msg := p.next(t)
	if msg[0] != MsgOptions {
		t.Fatalf("first message type = %q, want options", msg[0])
	}
	var opts OptionsMessage
	if err := json.Unmarshal(msg[1:], &opts); err != nil {
		t.Fatal(err)
	}
	if !opts.ReadOnly || len(opts.Apps) == 0 {
		t.Errorf("options = %+v", opts)
	}
}

func TestSessionCommandProducesPatch(t *testing.T) {
	_, p, _ := startSession(t, Options{})
	p.next(t) // options

	p.in <- []byte(`2{"width":1280,"height":800}`)
	p.in <- []byte(`5{"action":"open","id":"about"}`)

	msg := p.next(t)
	if msg[0] != MsgPatch {
		t.Fatalf("message type = %q, want patch", msg[0])
	}
	var patch PatchMessage
	if err := json.Unmarshal(msg[1:], &patch); err != nil {
		t.Fatal(err)
	}
	if len(patch.Ops) == 0 || patch.Ops[0].Op != OpCreate || patch.Ops[0].ID != "about" {
		t.Errorf("patch = %+v", patch.Ops)
	}
}

func TestSessionPingPong(t *testing.T) {
	_, p, _ := startSession(t, Options{})
	p.next(t)
	p.in <- []byte{MsgPing}
	if msg := p.next(t); len(msg) != 1 || msg[0] != MsgPong {
		t.Errorf("reply = %q, want pong", msg)
	}
}

func TestSessionDropsInvalidMessages(t *testing.T) {
	_, p, _ := startSession(t, Options{})
	p.next(t)
	p.in <- []byte(`0{"kind":`)
	p.in <- []byte{}
	p.in <- []byte{MsgPing}
	if msg := p.next(t); msg[0] != MsgPong {
		t.Errorf("session stopped serving after bad input, got %q", msg)
	}
}

func TestSessionCloseDrainsTimers(t *testing.T) {
	s, p, done := startSession(t, Options{})
	p.next(t)
	p.in <- []byte(`5{"action":"open","id":"about"}`)
	p.next(t)

	// The close delay fires through the session loop.
	p.in <- []byte(`5{"action":"close","id":"about"}`)
	p.next(t) // closing state
	msg := p.next(t)
	var patch PatchMessage
	if err := json.Unmarshal(msg[1:], &patch); err != nil {
		t.Fatal(err)
	}
	if len(opsOf(patch.Ops, OpRemove)) != 1 {
		t.Errorf("expected remove op from timer, got %+v", patch.Ops)
	}

	s.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Close")
	}
	if last := p.next(t); last[0] != MsgClose {
		t.Errorf("last message = %q, want close", last)
	}
	if err := s.Post(func() {}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Post() after close = %v, want ErrSessionClosed", err)
	}
}

func TestSessionReadErrorEndsRun(t *testing.T) {
	_, p, done := startSession(t, Options{})
	p.next(t)
	close(p.in)
	select {
	case err := <-done:
		if !errors.Is(err, io.EOF) {
			t.Errorf("Run() error = %v, want EOF", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after the client went away")
	}
}
