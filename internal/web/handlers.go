package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/coder/websocket"
	"github.com/quic-go/webtransport-go"
)

// readLimit bounds a single WebSocket message.
const readLimit = desktop.MaxFrameSize

// wsTransport carries desktop messages as binary WebSocket messages.
type wsTransport struct {
	conn *websocket.Conn
}

func (t wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	return data, err
}

func (t wsTransport) Write(ctx context.Context, msg []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, msg)
}

// wtTransport carries desktop messages on a WebTransport stream, each with
// a 4-byte big-endian length prefix.
type wtTransport struct {
	stream *webtransport.Stream
}

func (t wtTransport) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return desktop.ReadFramed(t.stream)
}

func (t wtTransport) Write(ctx context.Context, msg []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.stream.SetWriteDeadline(deadline)
		defer func() { _ = t.stream.SetWriteDeadline(time.Time{}) }()
	}
	return desktop.WriteFramed(t.stream, msg)
}

// connLimiter caps concurrent client connections. A max of zero or less
// admits everyone.
type connLimiter struct {
	max    int
	active atomic.Int32
}

func (l *connLimiter) acquire() bool {
	if l.max <= 0 {
		return true
	}
	n := l.active.Add(1)
	if int(n) > l.max {
		l.active.Add(-1)
		logger.Warn("connection limit reached", "active", n-1, "max", l.max)
		return false
	}
	logger.Debug("connection admitted", "active", n)
	return true
}

func (l *connLimiter) release() {
	if l.max <= 0 {
		return
	}
	logger.Debug("connection released", "active", l.active.Add(-1))
}

// admit reserves a connection slot or answers 503.
func (s *Server) admit(w http.ResponseWriter) bool {
	if s.limiter.acquire() {
		return true
	}
	http.Error(w, "Maximum connections reached", http.StatusServiceUnavailable)
	return false
}

// runSession drives a fresh desktop session over tr until either side ends
// it. It reports whether the session ended cleanly.
func (s *Server) runSession(ctx context.Context, r *http.Request, via string, tr desktop.Transport, started func(*desktop.Session)) bool {
	begin := time.Now()
	session := s.createSession()
	log := logger.With("session", session.ID, "remote", r.RemoteAddr, "via", via)
	log.Info("session started")
	if started != nil {
		started(session)
	}

	err := session.Run(ctx, tr)
	s.closeSession(session, begin)
	log.Info("session ended", "duration", time.Since(begin).Round(time.Second))

	if err != nil && !isDisconnect(err) {
		log.Warn("session error", "err", err)
		return false
	}
	return true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w) {
		return
	}
	defer s.limiter.release()

	origins := s.config.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
	if err != nil {
		logger.Error("websocket accept failed", "err", err, "remote", r.RemoteAddr, "user_agent", r.UserAgent())
		return
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if s.runSession(ctx, r, "websocket", wsTransport{conn: conn}, nil) {
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	}
}

func (s *Server) handleWebTransport(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w) {
		return
	}
	defer s.limiter.release()

	wt, err := s.wtServer.Upgrade(w, r)
	if err != nil {
		logger.Error("webtransport upgrade failed", "err", err, "remote", r.RemoteAddr, "proto", r.Proto)
		return
	}
	defer func() { _ = wt.CloseWithError(0, "session closed") }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream, err := wt.AcceptStream(ctx)
	if err != nil {
		logger.Error("stream accept failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer func() { _ = stream.Close() }()

	// The framed reader only returns once the stream read side is cancelled.
	unblock := func(session *desktop.Session) {
		go func() {
			select {
			case <-session.Done():
			case <-wt.Context().Done():
			}
			stream.CancelRead(0)
		}()
	}
	s.runSession(ctx, r, "webtransport", wtTransport{stream: stream}, unblock)
}

// isDisconnect reports whether err is the normal end of a client
// connection rather than a fault.
func isDisconnect(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
