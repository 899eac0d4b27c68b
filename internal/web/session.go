package web

import (
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
)

func (s *Server) createSession() *desktop.Session {
	settings, monitor := s.settings()
	session := desktop.NewSession(desktop.Options{
		Settings: settings,
		Monitor:  monitor,
		ReadOnly: s.config.ReadOnly,
	})
	s.sessions.Store(session.ID, session)
	logger.Debug("session created", "session", session.ID)
	return session
}

func (s *Server) closeSession(session *desktop.Session, startTime time.Time) {
	session.Close()
	s.sessions.Delete(session.ID)

	logger.Debug("session closed",
		"session", session.ID,
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
}

// closeSessions ends every running session, which sends each client a
// close message.
func (s *Server) closeSessions() {
	s.sessions.Range(func(_, v any) bool {
		v.(*desktop.Session).Close()
		return true
	})
}

// SessionCount returns the number of running sessions.
func (s *Server) SessionCount() int {
	n := 0
	s.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
