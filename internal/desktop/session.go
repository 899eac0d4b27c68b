package desktop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/sched"
	"github.com/google/uuid"
)

// ErrSessionClosed is returned when posting to a session that has ended.
var ErrSessionClosed = errors.New("session closed")

// inboxSize is the number of scheduled callbacks that may wait for the
// session loop before timers block.
const inboxSize = 64

// closeTimeout bounds the final close message on shutdown.
const closeTimeout = time.Second

// Transport carries whole messages to and from one client.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, msg []byte) error
}

// Session runs one client's desktop. Client messages and timer callbacks
// are executed one at a time on the goroutine that calls Run, and the ops
// they produce are sent after each step.
type Session struct {
	ID        string
	desktop   *Desktop
	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once
	startTime time.Time
}

// NewSession creates a session whose desktop schedules its timers on the
// session loop. opts.Scheduler is ignored.
func NewSession(opts Options) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	opts.Scheduler = sched.NewLoop(func(f func()) { _ = s.Post(f) })
	if opts.Logger == nil {
		opts.Logger = logger.With("session", s.ID)
	}
	s.desktop = New(opts)
	return s
}

// Desktop returns the session's desktop. It must only be used from a
// callback passed to Post.
func (s *Session) Desktop() *Desktop { return s.desktop }

// Done returns a channel that is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Post queues f to run on the session loop.
func (s *Session) Post(f func()) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inbox <- f:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close ends the session. Run returns after its current step.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Run sends the session options and then serves t until the client goes
// away, ctx is cancelled or Close is called. A client that disconnects
// normally still yields the transport's read error.
func (s *Session) Run(ctx context.Context, t Transport) error {
	defer s.Close()
	defer s.desktop.Close()

	hello, err := Encode(MsgOptions, s.desktop.Hello())
	if err != nil {
		return err
	}
	if err := t.Write(ctx, hello); err != nil {
		return fmt.Errorf("failed to send options: %w", err)
	}

	msgs := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			data, err := t.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()

	logger.Debug("session loop started", "session", s.ID)
	for {
		select {
		case <-ctx.Done():
			s.sendClose(t)
			return nil
		case <-s.done:
			s.sendClose(t)
			return nil
		case err := <-readErr:
			logger.Debug("session read ended", "session", s.ID, "err", err,
				"duration", time.Since(s.startTime).Round(time.Millisecond))
			return err
		case data := <-msgs:
			if err := s.handle(ctx, t, data); err != nil {
				return err
			}
		case f := <-s.inbox:
			f()
		}
		if err := s.flush(ctx, t); err != nil {
			return err
		}
	}
}

func (s *Session) handle(ctx context.Context, t Transport, data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		logger.Warn("dropping message", "session", s.ID, "err", err)
		return nil
	}
	if _, ok := msg.(PingMessage); ok {
		if err := t.Write(ctx, []byte{MsgPong}); err != nil {
			return fmt.Errorf("failed to send pong: %w", err)
		}
		return nil
	}
	if err := s.desktop.Handle(msg); err != nil {
		logger.Warn("message rejected", "session", s.ID, "type", string(msg.Type()), "err", err)
	}
	return nil
}

func (s *Session) flush(ctx context.Context, t Transport) error {
	ops := s.desktop.Flush()
	if len(ops) == 0 {
		return nil
	}
	data, err := Encode(MsgPatch, PatchMessage{Ops: ops})
	if err != nil {
		return err
	}
	if err := t.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to send patch: %w", err)
	}
	return nil
}

func (s *Session) sendClose(t Transport) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_ = t.Write(ctx, []byte{MsgClose})
}
