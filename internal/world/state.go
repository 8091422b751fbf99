// Package world tracks the live connection state around the entity
// registry: which sessions exist and which have completed the handshake.
package world

import (
	"github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
)

// State holds all connected sessions. Accessed only from the tick loop
// goroutine, so no locks needed.
type State struct {
	sessions map[uint64]*net.Session
}

func NewState() *State {
	return &State{
		sessions: make(map[uint64]*net.Session, 64),
	}
}

func (s *State) AddSession(sess *net.Session) {
	s.sessions[sess.ID] = sess
}

func (s *State) RemoveSession(id uint64) {
	delete(s.sessions, id)
}

func (s *State) GetSession(id uint64) *net.Session {
	return s.sessions[id]
}

func (s *State) SessionCount() int {
	return len(s.sessions)
}

// AllSessions calls fn for every connected session.
func (s *State) AllSessions(fn func(*net.Session)) {
	for _, sess := range s.sessions {
		fn(sess)
	}
}

// ReadySessions calls fn for every session that has completed the
// handshake. Broadcast targets.
func (s *State) ReadySessions(fn func(*net.Session)) {
	for _, sess := range s.sessions {
		if sess.State() == packet.StateReady {
			fn(sess)
		}
	}
}
